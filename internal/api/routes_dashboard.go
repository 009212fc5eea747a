package api

import (
	"github.com/gin-gonic/gin"

	"github.com/apartguide/apartguide/internal/handlers"
	"github.com/apartguide/apartguide/internal/middleware"
	"github.com/apartguide/apartguide/internal/roles"
	"github.com/apartguide/apartguide/internal/services"
)

func registerDashboardRoutes(api *gin.RouterGroup, handler *handlers.DashboardHandler, roleSource *services.ProfileService) {
	api.GET("/dashboard/summary", middleware.RequireRole(roleSource, roles.Admin), handler.Summary)
}
