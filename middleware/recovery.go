package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/docqa/docqa-be/types"
)

// Recovery converts a handler panic into a logged 500 response using the
// same envelope the handlers respond with.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(c)

				slog.Error("panic recovered",
					"error", err,
					"request_id", requestID,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, types.DataResponse{
					Status:  false,
					Message: "Internal server error",
					Data:    gin.H{"request_id": requestID},
				})
			}
		}()

		c.Next()
	}
}
