package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into a 500 error envelope.
// The panic value is only echoed to clients when exposeErrors is set.
func Recovery(log *zap.Logger, exposeErrors bool) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			log.Error("panic recovered",
				zap.String("request_id", GetRequestID(c)),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)

			message := "An unexpected error occurred"
			if exposeErrors {
				message = fmt.Sprint(rec)
			}
			AbortWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message)
		}()

		c.Next()
	}
}
