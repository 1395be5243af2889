package handlers

import (
	"errors"
	"net/http"

	"trustwork/models"
	"trustwork/services/lifecycle"
	"trustwork/services/profile"
	"trustwork/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP statuses. Everything the service
// layer classifies gets a precise status; the rest is a 500 with the detail
// kept out of the response body.
func respondError(c *gin.Context, err error) {
	var vErr *lifecycle.ValidationError
	if errors.As(err, &vErr) {
		utils.JSONError(c, http.StatusBadRequest, "validation failed", vErr.Error())
		return
	}
	var pErr *profile.FieldPermissionError
	if errors.As(err, &pErr) {
		utils.JSONError(c, http.StatusForbidden, "permission denied", pErr.Error())
		return
	}
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, lifecycle.ErrConflict):
		utils.JSONError(c, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, lifecycle.ErrAlreadyInState):
		utils.JSONError(c, http.StatusConflict, "already in requested state", err.Error())
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		utils.JSONError(c, http.StatusConflict, "invalid state transition", err.Error())
	default:
		utils.GetLogger().Error("unhandled service error", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "")
	}
}

// currentUserID returns the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// currentActor builds the permission actor from the auth context.
func currentActor(c *gin.Context) (profile.Actor, bool) {
	id, ok := currentUserID(c)
	if !ok {
		return profile.Actor{}, false
	}
	role, _ := c.Get("userRole")
	roleStr, _ := role.(string)
	return profile.Actor{UserID: id, Role: models.Role(roleStr)}, true
}

// mustActor aborts with 401 when the auth context is missing. Routes behind
// JWTAuthMiddleware should never hit the abort path.
func mustActor(c *gin.Context) (profile.Actor, bool) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
	return actor, ok
}
