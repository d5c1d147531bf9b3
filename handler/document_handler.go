package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docqa/docqa-be/pkg/logger"
	"github.com/docqa/docqa-be/service"
	"github.com/docqa/docqa-be/types"
	"github.com/docqa/docqa-be/utils"
)

const maxUploadSize = 20 << 20 // 20MB

// DocumentHandler exposes the extraction pipeline over HTTP.
type DocumentHandler struct {
	documents *service.DocumentService
	uploadDir string
}

func NewDocumentHandler(documents *service.DocumentService, uploadDir string) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		uploadDir: uploadDir,
	}
}

// Upload accepts a multipart PDF upload, runs the extraction pipeline and
// streams per-page processing status as SSE events before the final JSON
// result.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid file",
		})
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "File too large",
		})
		return
	}

	title := header.Filename
	if metadata := c.Request.FormValue("metadata"); metadata != "" {
		var req types.UploadRequest
		if err := json.Unmarshal([]byte(metadata), &req); err != nil {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  false,
				Message: "Invalid metadata",
			})
			return
		}
		if req.Title != "" {
			title = req.Title
		}
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != "" && ext != ".pdf" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Unsupported file type: " + ext,
		})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Failed to read file",
		})
		return
	}

	if h.uploadDir != "" {
		if _, err := utils.SaveUpload(data, title, h.uploadDir); err != nil {
			logger.Warn(c.Request.Context(), "failed to save upload", "error", err)
		}
	}

	progress := func(update types.ProgressUpdate) {
		status, err := json.Marshal(types.ProcessingDocumentStatus{
			Status:         "processing",
			Message:        "Processing document",
			Progress:       float64(update.Page) / float64(update.TotalPages),
			TotalPages:     update.TotalPages,
			ProcessedPages: update.Page,
			Mode:           update.Mode,
		})
		if err != nil {
			return
		}
		c.SSEvent("message", string(status))
		c.Writer.Flush()
	}

	result, err := h.documents.ProcessBytes(c.Request.Context(), data, title, progress)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondUpload(c, result)
}

// UploadBase64 accepts a JSON body with a data:application/pdf;base64 URI.
func (h *DocumentHandler) UploadBase64(c *gin.Context) {
	var req types.UploadBase64Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}

	result, err := h.documents.ProcessDataURI(c.Request.Context(), req.Data, req.Title, nil)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondUpload(c, result)
}

func (h *DocumentHandler) respondUpload(c *gin.Context, result *types.ExtractionResult) {
	chunks, err := h.documents.Chunks(c.Request.Context(), result.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.UploadResponse{
			DocumentID: result.ID,
			Title:      result.Title,
			UsedOCR:    result.UsedOCR,
			ChunkCount: len(chunks),
			Metadata:   result.Metadata,
		},
	})
}

// Get returns a stored document with its text, metadata and structure.
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{Status: true, Data: doc})
}

// List returns all stored documents.
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{Status: true, Data: docs})
}

// Analysis returns the derived content analysis for a stored document.
func (h *DocumentHandler) Analysis(c *gin.Context) {
	analysis, err := h.documents.Analyze(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{Status: true, Data: analysis})
}

// Chunks returns a stored document's chunk sequence.
func (h *DocumentHandler) Chunks(c *gin.Context) {
	chunks, err := h.documents.Chunks(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{Status: true, Data: chunks})
}

// Restructure reformats a stored document's text through the AI gateway.
func (h *DocumentHandler) Restructure(c *gin.Context) {
	doc, err := h.documents.Restructure(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{Status: true, Data: doc})
}

// Delete removes a stored document.
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{Status: true})
}
