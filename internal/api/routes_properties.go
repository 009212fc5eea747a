package api

import (
	"github.com/gin-gonic/gin"

	"github.com/apartguide/apartguide/internal/handlers"
	"github.com/apartguide/apartguide/internal/middleware"
	"github.com/apartguide/apartguide/internal/roles"
	"github.com/apartguide/apartguide/internal/services"
)

func registerPropertyRoutes(api *gin.RouterGroup, handler *handlers.PropertiesHandler, roleSource *services.ProfileService) {
	// Property visibility is scoped inside the service by the caller's role,
	// so the routes only need the role loaded into the request context.
	props := api.Group("/properties")
	props.Use(middleware.RequireRole(roleSource, roles.Guest))
	{
		props.GET("", handler.List)
		props.POST("", handler.Create)
		props.GET("/:id", handler.Get)
		props.PATCH("/:id", handler.Update)
		props.DELETE("/:id", handler.Delete)

		props.GET("/:id/team", handler.ListTeam)
		props.POST("/:id/team", handler.AssignTeamMember)
		props.DELETE("/:id/team/:userId", handler.RemoveTeamMember)
	}
}
