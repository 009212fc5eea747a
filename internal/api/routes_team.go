package api

import (
	"github.com/gin-gonic/gin"

	"github.com/apartguide/apartguide/internal/handlers"
	"github.com/apartguide/apartguide/internal/middleware"
	"github.com/apartguide/apartguide/internal/roles"
	"github.com/apartguide/apartguide/internal/services"
)

func registerTeamRoutes(api *gin.RouterGroup, members *handlers.TeamMembersHandler, invitations *handlers.InvitationHandler, roleSource *services.ProfileService) {
	team := api.Group("/team")
	team.Use(middleware.RequireRole(roleSource, roles.Admin))
	{
		team.GET("/members", members.List)
		team.POST("/members", members.Create)
		team.GET("/members/:id", members.Get)
		team.PATCH("/members/:id", members.Update)
		team.DELETE("/members/:id", members.Delete)

		team.GET("/invitations", invitations.List)
		team.POST("/invitations", invitations.Issue)
	}
}
