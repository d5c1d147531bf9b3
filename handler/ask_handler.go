package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docqa/docqa-be/service"
	"github.com/docqa/docqa-be/types"
)

// AskHandler answers questions about stored documents.
type AskHandler struct {
	documents *service.DocumentService
}

func NewAskHandler(documents *service.DocumentService) *AskHandler {
	return &AskHandler{documents: documents}
}

func (h *AskHandler) Ask(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}
	if req.DocumentID == "" || req.Question == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "document_id and question are required",
		})
		return
	}

	res, err := h.documents.Ask(c.Request.Context(), req.DocumentID, req.Question)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{Status: true, Data: res})
}
