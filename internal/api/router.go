package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/apartguide/apartguide/internal/auth"
	"github.com/apartguide/apartguide/internal/handlers"
	"github.com/apartguide/apartguide/internal/middleware"
	"github.com/apartguide/apartguide/internal/services"
)

// Deps carries the constructed services the router wires into handlers.
type Deps struct {
	DB          *gorm.DB
	JWT         *iauth.JWTService
	Sessions    *iauth.SessionService
	Accounts    *services.AccountService
	Profiles    *services.ProfileService
	Invitations *services.InvitationService
	TeamMembers *services.TeamMemberService
	Properties  *services.PropertyService
	Email       *services.EmailService
	Resets      *services.PasswordResetService
	Dashboard   *services.DashboardService

	// RateStore may be nil, in which case an in-process store is used.
	RateStore        middleware.RateStore
	RateLimitMax     int
	RateLimitWindow  time.Duration
}

func (d Deps) validate() error {
	if d.DB == nil {
		return fmt.Errorf("database handle must be provided")
	}
	if d.JWT == nil {
		return fmt.Errorf("jwt service must be provided")
	}
	if d.Sessions == nil {
		return fmt.Errorf("session service must be provided")
	}
	if d.Accounts == nil || d.Profiles == nil || d.Invitations == nil ||
		d.TeamMembers == nil || d.Properties == nil || d.Email == nil ||
		d.Resets == nil || d.Dashboard == nil {
		return fmt.Errorf("all services must be provided")
	}
	return nil
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	rateMax := deps.RateLimitMax
	if rateMax <= 0 {
		rateMax = 100
	}
	rateWindow := deps.RateLimitWindow
	if rateWindow <= 0 {
		rateWindow = time.Minute
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit(deps.RateStore, rateMax, rateWindow))

	// Health endpoint (public)
	r.GET("/health", handlers.Health())

	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Profiles, deps.Sessions, deps.Resets)
	invitationHandler := handlers.NewInvitationHandler(deps.Invitations, deps.Sessions)
	usersHandler := handlers.NewUsersHandler(deps.Accounts)
	profilesHandler := handlers.NewProfilesHandler(deps.Profiles)
	teamMembersHandler := handlers.NewTeamMembersHandler(deps.TeamMembers)
	propertiesHandler := handlers.NewPropertiesHandler(deps.Properties)
	emailHandler := handlers.NewEmailHandler(deps.Email)
	dashboardHandler := handlers.NewDashboardHandler(deps.Dashboard)

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(deps.JWT))

	registerAuthRoutes(r, api, authRouteDeps{
		Auth:        authHandler,
		Invitations: invitationHandler,
	})
	registerUserRoutes(api, usersHandler, profilesHandler, deps.Profiles)
	registerTeamRoutes(api, teamMembersHandler, invitationHandler, deps.Profiles)
	registerPropertyRoutes(api, propertiesHandler, deps.Profiles)
	registerEmailRoutes(api, emailHandler, deps.Profiles)
	registerDashboardRoutes(api, dashboardHandler, deps.Profiles)

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
