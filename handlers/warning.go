package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	userRepo "trustwork/database/repository/user"
	warningRepo "trustwork/database/repository/warning"
	"trustwork/models"
	"trustwork/services/lifecycle"
	"trustwork/services/notification"
	"trustwork/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WarningHandler serves the warning state machine.
type WarningHandler struct {
	Engine lifecycle.Orchestrator
	Repo   warningRepo.WarningRepository
	Users  userRepo.UserRepository
	Mailer notification.EmailService
}

func NewWarningHandler(engine lifecycle.Orchestrator, repo warningRepo.WarningRepository, users userRepo.UserRepository, mailer notification.EmailService) *WarningHandler {
	return &WarningHandler{Engine: engine, Repo: repo, Users: users, Mailer: mailer}
}

// notifyUser emails the warned user in the background. Failures are logged
// and never roll back the committed state change.
func (h *WarningHandler) notifyUser(userID, subject, body string) {
	if h.Mailer == nil || h.Users == nil {
		return
	}
	go func() {
		usr, err := h.Users.GetByID(userID)
		if err != nil || usr.Email == "" {
			utils.GetLogger().Warn("cannot notify user", zap.String("userId", userID), zap.Error(err))
			return
		}
		if err := h.Mailer.SendEmail(context.Background(), usr.Email, subject, body); err != nil {
			utils.GetLogger().Warn("warning notification failed", zap.String("userId", userID), zap.Error(err))
		}
	}()
}

// IssueWarningHandler handles POST /api/warnings.
func (h *WarningHandler) IssueWarningHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req lifecycle.IssueWarningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	// The issuer is always the authenticated admin, never a body field.
	req.IssuedBy = actor.UserID
	w, err := h.Engine.IssueWarning(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.notifyUser(w.UserID,
		"You have received a warning",
		fmt.Sprintf("A %s warning was issued against your account: %s", w.Severity, w.Reason))
	c.JSON(http.StatusCreated, w)
}

// GetWarningHandler handles GET /api/warnings/:id.
func (h *WarningHandler) GetWarningHandler(c *gin.Context) {
	w, err := h.Repo.GetByID(c.Param("id"))
	if err != nil {
		utils.GetLogger().Warn("warning lookup failed", zap.String("id", c.Param("id")), zap.Error(err))
		utils.JSONError(c, http.StatusNotFound, "warning not found", "")
		return
	}
	c.JSON(http.StatusOK, w)
}

// ListWarningsHandler handles GET /api/warnings with query filters.
func (h *WarningHandler) ListWarningsHandler(c *gin.Context) {
	filter := warningRepo.WarningFilter{
		UserID:    c.Query("userId"),
		ProfileID: c.Query("profileId"),
		Status:    models.WarningStatus(c.Query("status")),
		Severity:  models.WarningSeverity(c.Query("severity")),
		Category:  models.WarningCategory(c.Query("category")),
		IssuedBy:  c.Query("issuedBy"),
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid since parameter", "expected RFC3339 timestamp")
			return
		}
		filter.Since = t
	}
	page, limit := pagination(c)
	warnings, err := h.Repo.List(filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"warnings": warnings, "page": page, "limit": limit})
}

// ListMyWarningsHandler handles GET /api/warnings/me for the warned user.
func (h *WarningHandler) ListMyWarningsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	page, limit := pagination(c)
	warnings, err := h.Repo.List(warningRepo.WarningFilter{UserID: userID}, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"warnings": warnings, "page": page, "limit": limit})
}

// AcknowledgeWarningHandler handles POST /api/warnings/:id/acknowledge. Only
// the warned user may acknowledge their own warning.
func (h *WarningHandler) AcknowledgeWarningHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	existing, err := h.Repo.GetByID(c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "warning not found", "")
		return
	}
	if existing.UserID != userID {
		utils.JSONError(c, http.StatusForbidden, "permission denied", "only the warned user may acknowledge")
		return
	}
	w, err := h.Engine.AcknowledgeWarning(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// ResolveWarningHandler handles POST /api/warnings/:id/resolve.
func (h *WarningHandler) ResolveWarningHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var body struct {
		Note string `json:"note" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	w, err := h.Engine.ResolveWarning(c.Request.Context(), c.Param("id"), actor.UserID, body.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	h.notifyUser(w.UserID,
		"Your warning has been resolved",
		fmt.Sprintf("The warning on your account has been resolved: %s", body.Note))
	c.JSON(http.StatusOK, w)
}

// ActivateWarningHandler handles POST /api/warnings/:id/activate.
func (h *WarningHandler) ActivateWarningHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	w, err := h.Engine.ActivateWarning(c.Request.Context(), c.Param("id"), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// DeactivateWarningHandler handles POST /api/warnings/:id/deactivate.
func (h *WarningHandler) DeactivateWarningHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	w, err := h.Engine.DeactivateWarning(c.Request.Context(), c.Param("id"), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}
