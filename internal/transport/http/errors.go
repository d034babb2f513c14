package transporthttp

import (
	"errors"
	"net/http"

	"finboard/internal/gateway/oanda"
	"finboard/internal/logger"
	"finboard/internal/signal"

	"github.com/gin-gonic/gin"
)

// writeBrokerError maps the error taxonomy to HTTP responses. Missing
// credentials get a distinct code so the UI can render a "configure your API
// keys" affordance; broker errors pass the upstream status and payload
// through untouched.
func writeBrokerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, oanda.ErrMissingCredentials):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":  "missing_credentials",
			"error": "broker API credentials are not configured",
		})
	case errors.Is(err, oanda.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if apiErr, ok := oanda.AsAPIError(err); ok {
			status := apiErr.StatusCode
			if status < 400 || status > 599 {
				status = http.StatusBadGateway
			}
			c.JSON(status, gin.H{
				"code":     "broker_error",
				"error":    apiErr.Error(),
				"upstream": string(apiErr.Body),
			})
			return
		}
		logger.Errorf("[api] broker call failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func writeSignalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, signal.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, signal.ErrActiveLinkExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Errorf("[api] signal op failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
