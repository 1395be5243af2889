package handlers

import (
	"context"
	"fmt"
	"net/http"

	clientRepo "trustwork/database/repository/client"
	userRepo "trustwork/database/repository/user"
	"trustwork/services/lifecycle"
	"trustwork/services/notification"
	"trustwork/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ClientHandler serves client profile reads and the trust mutations.
type ClientHandler struct {
	Engine lifecycle.Orchestrator
	Repo   clientRepo.ClientProfileRepository
	Users  userRepo.UserRepository
	Mailer notification.EmailService
}

func NewClientHandler(engine lifecycle.Orchestrator, repo clientRepo.ClientProfileRepository, users userRepo.UserRepository, mailer notification.EmailService) *ClientHandler {
	return &ClientHandler{Engine: engine, Repo: repo, Users: users, Mailer: mailer}
}

// GetClientHandler handles GET /api/clients/:id.
func (h *ClientHandler) GetClientHandler(c *gin.Context) {
	cl, err := h.Repo.GetByID(c.Param("id"))
	if err != nil {
		utils.GetLogger().Warn("client lookup failed", zap.String("id", c.Param("id")), zap.Error(err))
		utils.JSONError(c, http.StatusNotFound, "client not found", "")
		return
	}
	c.JSON(http.StatusOK, cl)
}

// ListClientsHandler handles GET /api/clients with optional risk and tier filters.
func (h *ClientHandler) ListClientsHandler(c *gin.Context) {
	filter := bson.M{"isDeleted": bson.M{"$ne": true}}
	if risk := c.Query("riskLevel"); risk != "" {
		filter["riskLevel"] = risk
	}
	if tier := c.Query("loyaltyTier"); tier != "" {
		filter["loyaltyTier"] = tier
	}
	page, limit := pagination(c)
	clients, err := h.Repo.List(filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients, "page": page, "limit": limit})
}

// UpdateTrustScoreHandler handles PUT /api/clients/:id/trust-score. The risk
// level is never accepted from the caller; it is derived from the score and
// the client's behavioral counters.
func (h *ClientHandler) UpdateTrustScoreHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var body struct {
		Score *int `json:"score" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	cl, err := h.Engine.UpdateTrustScore(c.Request.Context(), c.Param("id"), *body.Score, actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

// RecordBookingOutcomeHandler handles POST /api/clients/:id/bookings.
func (h *ClientHandler) RecordBookingOutcomeHandler(c *gin.Context) {
	var body struct {
		Outcome lifecycle.BookingOutcome `json:"outcome" binding:"required"`
		Amount  float64                  `json:"amount"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	cl, err := h.Engine.RecordBookingOutcome(c.Request.Context(), c.Param("id"), body.Outcome, body.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

// SuspendClientHandler handles POST /api/clients/:id/suspend.
func (h *ClientHandler) SuspendClientHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var body struct {
		Reason       string `json:"reason" binding:"required"`
		DurationDays int    `json:"durationDays" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	cl, err := h.Engine.SuspendClient(c.Request.Context(), c.Param("id"), body.Reason, body.DurationDays, actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	// Fire-and-forget notice; the suspension itself is already committed.
	if h.Mailer != nil && h.Users != nil {
		go func(userID, reason string, days int) {
			usr, err := h.Users.GetByID(userID)
			if err != nil || usr.Email == "" {
				utils.GetLogger().Warn("cannot notify suspended client", zap.String("userId", userID), zap.Error(err))
				return
			}
			msg := fmt.Sprintf("Your account has been suspended for %d days: %s", days, reason)
			if err := h.Mailer.SendEmail(context.Background(), usr.Email, "Account suspended", msg); err != nil {
				utils.GetLogger().Warn("suspension notification failed", zap.String("userId", userID), zap.Error(err))
			}
		}(cl.UserID, body.Reason, body.DurationDays)
	}
	c.JSON(http.StatusOK, cl)
}
