package handlers

import (
	"net/http"

	providerRepo "trustwork/database/repository/provider"
	"trustwork/models"
	"trustwork/services/lifecycle"
	"trustwork/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ProviderHandler serves provider profile reads and the lifecycle mutations
// (penalties, risk assessments, status changes).
type ProviderHandler struct {
	Engine lifecycle.Orchestrator
	Repo   providerRepo.ProviderProfileRepository
}

func NewProviderHandler(engine lifecycle.Orchestrator, repo providerRepo.ProviderProfileRepository) *ProviderHandler {
	return &ProviderHandler{Engine: engine, Repo: repo}
}

// GetProviderHandler handles GET /api/providers/:id.
func (h *ProviderHandler) GetProviderHandler(c *gin.Context) {
	p, err := h.Repo.GetByID(c.Param("id"))
	if err != nil {
		utils.GetLogger().Warn("provider lookup failed", zap.String("id", c.Param("id")), zap.Error(err))
		utils.JSONError(c, http.StatusNotFound, "provider not found", "")
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListProvidersHandler handles GET /api/providers with optional status and
// risk filters.
func (h *ProviderHandler) ListProvidersHandler(c *gin.Context) {
	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if risk := c.Query("riskLevel"); risk != "" {
		filter["riskLevel"] = risk
	}
	page, limit := pagination(c)
	providers, err := h.Repo.List(filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers, "page": page, "limit": limit})
}

// ApplyPenaltyHandler handles POST /api/providers/:id/penalties.
func (h *ProviderHandler) ApplyPenaltyHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	p, err := h.Engine.ApplyPenalty(c.Request.Context(), c.Param("id"), body.Reason, actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateRiskAssessmentHandler handles POST /api/providers/:id/assessments.
func (h *ProviderHandler) UpdateRiskAssessmentHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var body struct {
		HorizonDays int `json:"horizonDays"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	p, err := h.Engine.UpdateRiskAssessment(c.Request.Context(), c.Param("id"), actor.UserID, body.HorizonDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ScheduleAssessmentHandler handles PUT /api/providers/:id/assessments/next.
func (h *ProviderHandler) ScheduleAssessmentHandler(c *gin.Context) {
	var body struct {
		Days int `json:"days" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	p, err := h.Engine.ScheduleNextAssessment(c.Request.Context(), c.Param("id"), body.Days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// BulkAssessHandler handles POST /api/admin/providers/assessments. Partial
// failures come back per item, never as a wholesale error.
func (h *ProviderHandler) BulkAssessHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var body struct {
		ProviderIDs []string `json:"providerIds" binding:"required"`
		HorizonDays int      `json:"horizonDays"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	result, err := h.Engine.BulkUpdateRiskAssessments(c.Request.Context(), body.ProviderIDs, actor.UserID, body.HorizonDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SetStatusHandler handles PUT /api/providers/:id/status.
func (h *ProviderHandler) SetStatusHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var body struct {
		Status models.ProviderStatus `json:"status" binding:"required"`
		Reason string                `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	p, err := h.Engine.SetProviderStatus(c.Request.Context(), c.Param("id"), body.Status, body.Reason, actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
