package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docqa/docqa-be/types"
)

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidFormat),
		errors.Is(err, types.ErrEmptyFile),
		errors.Is(err, types.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrExtractionFailed),
		errors.Is(err, types.ErrOCRFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrGatewayUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, types.ErrGatewayError):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), types.DataResponse{
		Status:  false,
		Message: err.Error(),
	})
}
