package handlers

import (
	"errors"
	"net/http"

	"trustwork/services/account"
	"trustwork/services/lifecycle"
	"trustwork/services/socialauth"
	"trustwork/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves credential and social sign-in endpoints.
type AuthHandler struct {
	Accounts account.AccountService
	Social   socialauth.Service
}

func NewAuthHandler(accounts account.AccountService, social socialauth.Service) *AuthHandler {
	return &AuthHandler{Accounts: accounts, Social: social}
}

// SignUpHandler handles POST /api/auth/register.
func (h *AuthHandler) SignUpHandler(c *gin.Context) {
	var req account.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	resp, err := h.Accounts.SignUp(c.Request.Context(), req)
	if err != nil {
		var vErr *lifecycle.ValidationError
		switch {
		case errors.As(err, &vErr):
			utils.JSONError(c, http.StatusBadRequest, "validation failed", vErr.Error())
		case errors.Is(err, lifecycle.ErrConflict):
			utils.JSONError(c, http.StatusConflict, "account already exists", "")
		default:
			utils.GetLogger().Error("sign up failed", zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "registration failed", "")
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SignInHandler handles POST /api/auth/login.
func (h *AuthHandler) SignInHandler(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	resp, err := h.Accounts.SignIn(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SocialSignInHandler handles POST /api/auth/social. The provider token is
// verified against the provider before any account is touched.
func (h *AuthHandler) SocialSignInHandler(c *gin.Context) {
	var body struct {
		Provider string `json:"provider" binding:"required"`
		Token    string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	resp, err := h.Social.SignIn(c.Request.Context(), body.Provider, body.Token)
	if err != nil {
		utils.GetLogger().Warn("social sign-in rejected", zap.String("provider", body.Provider), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "social sign-in failed"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RevokeTokenHandler handles DELETE /api/auth/token.
func (h *AuthHandler) RevokeTokenHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if err := h.Accounts.RevokeToken(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}

// MeHandler handles GET /api/auth/me.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	usr, err := h.Accounts.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usr)
}

// RequestPasswordResetHandler handles POST /api/auth/password-reset.
// Always answers 200 so callers cannot probe which emails exist.
func (h *AuthHandler) RequestPasswordResetHandler(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	sessionID, err := h.Accounts.InitiatePasswordReset(c.Request.Context(), body.Email)
	if err != nil {
		utils.GetLogger().Error("password reset initiation failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "reset failed, please try again", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID})
}

// CompletePasswordResetHandler handles POST /api/auth/password-reset/confirm.
func (h *AuthHandler) CompletePasswordResetHandler(c *gin.Context) {
	var body struct {
		SessionID   string `json:"sessionId" binding:"required"`
		Code        string `json:"code" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.Accounts.CompletePasswordReset(c.Request.Context(), body.SessionID, body.Code, body.NewPassword); err != nil {
		var vErr *lifecycle.ValidationError
		switch {
		case errors.Is(err, lifecycle.ErrNotFound):
			utils.JSONError(c, http.StatusNotFound, "reset session not found or expired", "")
		case errors.As(err, &vErr):
			utils.JSONError(c, http.StatusBadRequest, "validation failed", vErr.Error())
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
