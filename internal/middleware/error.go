package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "bourse/internal/errors"
	"bourse/internal/logger"
)

// ErrorHandler converts errors attached to the Gin context into the JSON
// error envelope the game client expects. Typed AppErrors keep their code
// and status; anything else surfaces as a generic 500 so internal details
// never reach players.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			logger.Get().Errorw("unhandled error",
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			fields := []any{
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			}
			if playerID, ok := c.Get("playerID"); ok {
				fields = append(fields, "player_id", playerID)
			}
			logger.Get().Errorw("request failed", fields...)
		}

		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}
