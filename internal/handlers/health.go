package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apartguide/apartguide/pkg/response"
)

// Health answers readiness probes. It deliberately skips dependency checks
// so a degraded database does not take the process out of rotation.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
