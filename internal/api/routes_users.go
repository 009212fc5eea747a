package api

import (
	"github.com/gin-gonic/gin"

	"github.com/apartguide/apartguide/internal/handlers"
	"github.com/apartguide/apartguide/internal/middleware"
	"github.com/apartguide/apartguide/internal/roles"
	"github.com/apartguide/apartguide/internal/services"
)

func registerUserRoutes(api *gin.RouterGroup, users *handlers.UsersHandler, profiles *handlers.ProfilesHandler, roleSource *services.ProfileService) {
	// Account provisioning is reserved for super admins.
	admin := api.Group("/users")
	admin.Use(middleware.RequireRole(roleSource, roles.SuperAdmin))
	{
		admin.POST("", users.Create)
		admin.DELETE("", users.Delete)
		admin.POST("/invite", users.Invite)
	}

	group := api.Group("/profiles")
	{
		group.PATCH("/me", profiles.UpdateOwn)
		group.GET("", middleware.RequireRole(roleSource, roles.Admin), profiles.List)
		group.GET("/:id", middleware.RequireRole(roleSource, roles.Admin), profiles.Get)
		group.PATCH("/:id/role", middleware.RequireRole(roleSource, roles.SuperAdmin), profiles.UpdateRole)
	}
}
