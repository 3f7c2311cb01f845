package middleware

import (
	"github.com/gin-gonic/gin"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/logger"
)

// ErrorHandlerMiddleware converts errors attached to the gin context
// into the standard error response. Handlers call c.Error(err) and
// return; classification decides the status code.
func ErrorHandlerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)
		if status >= 500 {
			log.Errorw("request failed",
				"path", c.Request.URL.Path,
				"error", err)
		}
		c.AbortWithStatusJSON(status, ierr.NewErrorResponse(err))
	}
}
