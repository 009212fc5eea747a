package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/apartguide/apartguide/internal/database/testutil"
	"github.com/apartguide/apartguide/internal/models"
	"github.com/apartguide/apartguide/internal/roles"
	"github.com/apartguide/apartguide/internal/services"
)

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	profiles, err := services.NewProfileService(db)
	require.NoError(t, err)

	admin := &models.Profile{ID: "11111111-1111-1111-1111-111111111111", Email: "admin@example.com", Role: "admin"}
	guest := &models.Profile{ID: "22222222-2222-2222-2222-222222222222", Email: "guest@example.com", Role: "guest"}
	require.NoError(t, db.Create(admin).Error)
	require.NoError(t, db.Create(guest).Error)

	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		// Simulate Auth having resolved the caller.
		c.Set(CtxUserIDKey, c.GetHeader("X-Test-User"))
	}, RequireRole(profiles, roles.Admin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := []struct {
		name   string
		userID string
		want   int
	}{
		{"admin allowed", admin.ID, http.StatusOK},
		{"guest forbidden", guest.ID, http.StatusForbidden},
		{"unknown profile unauthorized", "33333333-3333-3333-3333-333333333333", http.StatusUnauthorized},
		{"missing identity unauthorized", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.userID != "" {
				req.Header.Set("X-Test-User", tc.userID)
			}
			r.ServeHTTP(w, req)
			require.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRequireRoleCachesFlags(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	profiles, err := services.NewProfileService(db)
	require.NoError(t, err)

	super := &models.Profile{ID: "44444444-4444-4444-4444-444444444444", Email: "root@example.com", Role: "super_admin"}
	require.NoError(t, db.Create(super).Error)

	r := gin.New()
	r.GET("/layered", func(c *gin.Context) {
		c.Set(CtxUserIDKey, super.ID)
	}, RequireRole(profiles, roles.Admin), RequireRole(profiles, roles.SuperAdmin), func(c *gin.Context) {
		require.Equal(t, roles.SuperAdmin, RoleFromContext(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/layered", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
