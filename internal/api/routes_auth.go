package api

import (
	"github.com/gin-gonic/gin"

	"github.com/apartguide/apartguide/internal/handlers"
)

type authRouteDeps struct {
	Auth        *handlers.AuthHandler
	Invitations *handlers.InvitationHandler
}

func registerAuthRoutes(engine *gin.Engine, api *gin.RouterGroup, deps authRouteDeps) {
	auth := engine.Group("/api/auth")
	{
		auth.POST("/register", deps.Auth.Register)
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/refresh", deps.Auth.Refresh)
		auth.POST("/forgot-password", deps.Auth.ForgotPassword)
		auth.POST("/reset-password", deps.Auth.ResetPassword)
		auth.POST("/check-email", deps.Auth.CheckEmail)

		// Invitation activation is driven by the emailed link, before the
		// invitee has any credentials.
		auth.GET("/invitation", deps.Invitations.Lookup)
		auth.POST("/invitation/verify", deps.Invitations.Verify)
		auth.POST("/invitation/activate", deps.Invitations.Activate)
	}

	api.GET("/auth/me", deps.Auth.Me)
	api.POST("/auth/logout", deps.Auth.Logout)
	api.POST("/auth/set-password", deps.Auth.SetPassword)
}
