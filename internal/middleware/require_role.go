package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/apartguide/apartguide/internal/roles"
	"github.com/apartguide/apartguide/internal/services"
	"github.com/apartguide/apartguide/pkg/errors"
	"github.com/apartguide/apartguide/pkg/response"
)

const (
	CtxRoleKey  = "userRole"
	CtxFlagsKey = "roleFlags"
)

// RequireRole loads the caller's profile role once per request and rejects
// callers below the required tier. It must run after Auth.
func RequireRole(profiles *services.ProfileService, required roles.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		flags, ok := flagsFromContext(c)
		if !ok {
			userID := c.GetString(CtxUserIDKey)
			if userID == "" {
				response.Error(c, errors.ErrUnauthorized)
				c.Abort()
				return
			}

			role, err := profiles.Role(c.Request.Context(), userID)
			if err != nil {
				response.Error(c, errors.ErrUnauthorized)
				c.Abort()
				return
			}

			flags = roles.FlagsFor(role)
			c.Set(CtxRoleKey, role)
			c.Set(CtxFlagsKey, flags)
		}

		if !flags.Allows(required) {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}

func flagsFromContext(c *gin.Context) (roles.Flags, bool) {
	value, exists := c.Get(CtxFlagsKey)
	if !exists {
		return roles.Flags{}, false
	}
	flags, ok := value.(roles.Flags)
	return flags, ok
}

// RoleFromContext returns the cached role for the request, defaulting to
// Guest when RequireRole has not run.
func RoleFromContext(c *gin.Context) roles.Role {
	value, exists := c.Get(CtxRoleKey)
	if !exists {
		return roles.Guest
	}
	role, ok := value.(roles.Role)
	if !ok {
		return roles.Guest
	}
	return role
}
