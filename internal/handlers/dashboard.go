package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apartguide/apartguide/internal/services"
	"github.com/apartguide/apartguide/pkg/response"
)

// DashboardHandler serves aggregate counts for the admin landing page.
type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GET /api/dashboard/summary
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(requestContext(c))
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}
	response.Success(c, http.StatusOK, summary)
}
