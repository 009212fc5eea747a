package api

import (
	"github.com/gin-gonic/gin"

	"github.com/apartguide/apartguide/internal/handlers"
	"github.com/apartguide/apartguide/internal/middleware"
	"github.com/apartguide/apartguide/internal/roles"
	"github.com/apartguide/apartguide/internal/services"
)

func registerEmailRoutes(api *gin.RouterGroup, handler *handlers.EmailHandler, roleSource *services.ProfileService) {
	email := api.Group("/email")
	email.Use(middleware.RequireRole(roleSource, roles.Admin))
	{
		email.POST("/send", handler.Send)

		email.GET("/templates", handler.ListTemplates)
		email.POST("/templates", handler.CreateTemplate)
		email.GET("/templates/:id", handler.GetTemplate)
		email.PATCH("/templates/:id", handler.UpdateTemplate)
		email.DELETE("/templates/:id", handler.DeleteTemplate)

		email.GET("/logs", handler.ListLogs)
	}
}
