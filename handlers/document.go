package handlers

import (
	"net/http"

	"trustwork/services/document"
	"trustwork/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DocumentHandler serves identity document upload, submission and review.
type DocumentHandler struct {
	Documents document.Service
}

func NewDocumentHandler(documents document.Service) *DocumentHandler {
	return &DocumentHandler{Documents: documents}
}

// UploadFileHandler handles POST /api/documents/upload (multipart form,
// field "file"). Returns the stored file reference for a later submission.
func (h *DocumentHandler) UploadFileHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "missing file", "multipart field 'file' is required")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		utils.GetLogger().Error("failed to open uploaded file", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "upload failed", "")
		return
	}
	defer f.Close()

	ref, err := h.Documents.Upload(c.Request.Context(), f, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ref)
}

// SubmitDocumentHandler handles POST /api/documents. The submitting user is
// taken from the auth context.
func (h *DocumentHandler) SubmitDocumentHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req document.SubmitDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	req.UserID = userID
	doc, err := h.Documents.SubmitDocument(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// ReviewDocumentHandler handles POST /api/admin/documents/:id/review.
func (h *DocumentHandler) ReviewDocumentHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var body struct {
		Approve *bool  `json:"approve" binding:"required"`
		Note    string `json:"note"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	doc, err := h.Documents.ReviewDocument(c.Request.Context(), c.Param("id"), *body.Approve, body.Note, actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// ListMyDocumentsHandler handles GET /api/documents/me.
func (h *DocumentHandler) ListMyDocumentsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	docs, err := h.Documents.ListUserDocuments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// ListPendingDocumentsHandler handles GET /api/admin/documents/pending.
func (h *DocumentHandler) ListPendingDocumentsHandler(c *gin.Context) {
	_, limit := pagination(c)
	docs, err := h.Documents.ListPending(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}
