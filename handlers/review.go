package handlers

import (
	"net/http"

	"trustwork/services/review"
	"trustwork/utils"

	"github.com/gin-gonic/gin"
)

// ReviewHandler serves provider review endpoints.
type ReviewHandler struct {
	Reviews review.Service
}

func NewReviewHandler(reviews review.Service) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews}
}

// CreateReviewHandler handles POST /api/reviews. The reviewer is the
// authenticated client; low ratings feed the provider's risk counters.
func (h *ReviewHandler) CreateReviewHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req review.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	req.ClientID = userID
	r, err := h.Reviews.CreateReview(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// ListProviderReviewsHandler handles GET /api/reviews/provider/:id.
func (h *ReviewHandler) ListProviderReviewsHandler(c *gin.Context) {
	page, limit := pagination(c)
	reviews, err := h.Reviews.ListProviderReviews(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "page": page, "limit": limit})
}

// DeleteReviewHandler handles DELETE /api/reviews/:id (admin moderation).
func (h *ReviewHandler) DeleteReviewHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if err := h.Reviews.DeleteReview(c.Request.Context(), c.Param("id"), actor.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review removed"})
}
