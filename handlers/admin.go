package handlers

import (
	"net/http"
	"strconv"
	"time"

	userRepo "trustwork/database/repository/user"
	"trustwork/services/report"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves moderation reporting endpoints.
type AdminHandler struct {
	Reports *report.Reporter
	Users   userRepo.UserRepository
}

func NewAdminHandler(reports *report.Reporter, users userRepo.UserRepository) *AdminHandler {
	return &AdminHandler{Reports: reports, Users: users}
}

// WarningStatsHandler handles GET /api/admin/stats/warnings.
func (h *AdminHandler) WarningStatsHandler(c *gin.Context) {
	topN, err := strconv.ParseInt(c.DefaultQuery("topIssuers", "10"), 10, 64)
	if err != nil || topN < 1 || topN > 100 {
		topN = 10
	}
	stats, err := h.Reports.WarningStats(c.Request.Context(), topN)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RiskDistributionHandler handles GET /api/admin/stats/risk.
func (h *AdminHandler) RiskDistributionHandler(c *gin.Context) {
	providers, err := h.Reports.ProviderRiskDistribution(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	clients, err := h.Reports.ClientRiskDistribution(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers, "clients": clients})
}

// OverdueAssessmentsHandler handles GET /api/admin/assessments/overdue.
func (h *AdminHandler) OverdueAssessmentsHandler(c *gin.Context) {
	providers, err := h.Reports.OverdueAssessments(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers, "count": len(providers)})
}

// ListUsersHandler handles GET /api/admin/users.
func (h *AdminHandler) ListUsersHandler(c *gin.Context) {
	users, err := h.Users.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}
