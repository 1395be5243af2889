package handlers

import (
	"net/http"
	"strconv"

	"trustwork/services/profile"
	"trustwork/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// ProfileHandler serves base profile endpoints and the provider/client
// extension attach operations.
type ProfileHandler struct {
	Profiles profile.Service
}

func NewProfileHandler(profiles profile.Service) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles}
}

// GetMyProfileHandler handles GET /api/profiles/me, creating the profile on
// first access so every signed-in account always has one.
func (h *ProfileHandler) GetMyProfileHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	p, err := h.Profiles.EnsureProfile(c.Request.Context(), actor.UserID, actor.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetProfileHandler handles GET /api/profiles/:id.
func (h *ProfileHandler) GetProfileHandler(c *gin.Context) {
	p, err := h.Profiles.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProfileHandler handles PATCH /api/profiles/:id. The service enforces
// the per-field write policy for the acting role.
func (h *ProfileHandler) UpdateProfileHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var update profile.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	p, err := h.Profiles.UpdateProfile(c.Request.Context(), c.Param("id"), actor, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListProfilesHandler handles GET /api/admin/profiles with optional role and
// verification filters.
func (h *ProfileHandler) ListProfilesHandler(c *gin.Context) {
	filter := bson.M{}
	if role := c.Query("role"); role != "" {
		filter["role"] = role
	}
	if vs := c.Query("verificationStatus"); vs != "" {
		filter["verificationStatus"] = vs
	}
	page, limit := pagination(c)
	profiles, err := h.Profiles.ListProfiles(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles, "page": page, "limit": limit})
}

// DeleteProfileHandler handles DELETE /api/profiles/:id (soft delete).
func (h *ProfileHandler) DeleteProfileHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if err := h.Profiles.SoftDeleteProfile(c.Request.Context(), c.Param("id"), actor.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile deleted"})
}

// RestoreProfileHandler handles POST /api/admin/profiles/:id/restore.
func (h *ProfileHandler) RestoreProfileHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	p, err := h.Profiles.RestoreProfile(c.Request.Context(), c.Param("id"), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// AttachProviderProfileHandler handles POST /api/profiles/:id/provider.
func (h *ProfileHandler) AttachProviderProfileHandler(c *gin.Context) {
	pp, err := h.Profiles.CreateProviderProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pp)
}

// AttachClientProfileHandler handles POST /api/profiles/:id/client.
func (h *ProfileHandler) AttachClientProfileHandler(c *gin.Context) {
	cp, err := h.Profiles.CreateClientProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cp)
}

// pagination reads page/limit query params with sane bounds.
func pagination(c *gin.Context) (int64, int64) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
