package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/rollcall/internal/app/auth"
	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/pkg/auth"
)

func newProtectedRouter(t *testing.T, now func() time.Time) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "mw-secret", AccessTokenExp: 30 * time.Minute, TokenIssuer: "rollcall.test", Now: now})
	authz, err := appauth.NewAuthorizationService()
	require.NoError(t, err)
	m := NewAuthMiddleware(jwtService, authz, zerolog.Nop())

	router := gin.New()
	group := router.Group("", m.JWTAuth())
	group.GET("/me", m.RequirePermission(appauth.ObjectProfile, appauth.ActionRead), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.Username()+"@"+claims.OrgCode)
	})
	group.GET("/admin", m.RequirePermission(appauth.ObjectAccounts, appauth.ActionList), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router, jwtService
}

func get(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthAndPermissions(t *testing.T) {
	now := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	router, jwtService := newProtectedRouter(t, func() time.Time { return now })

	teacher, _, err := jwtService.IssueAccessToken(auth.Identity{Username: "frizzle", Role: models.RoleTeacher, OrgCode: "SCH-OAK-AAAAAA"})
	require.NoError(t, err)
	admin, _, err := jwtService.IssueAccessToken(auth.Identity{Username: "admin", Role: models.RoleAdmin, OrgCode: "SCH-OAK-AAAAAA"})
	require.NoError(t, err)

	w := get(router, "/me", teacher)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "frizzle@SCH-OAK-AAAAAA", w.Body.String())

	assert.Equal(t, http.StatusForbidden, get(router, "/admin", teacher).Code)
	assert.Equal(t, http.StatusNoContent, get(router, "/admin", admin).Code)
	assert.Equal(t, http.StatusOK, get(router, "/me", admin).Code)
}

func TestJWTAuthRejectsUniformly(t *testing.T) {
	now := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	router, jwtService := newProtectedRouter(t, func() time.Time { return now })

	expired, _, err := jwtService.Issue(auth.Identity{Username: "admin", Role: models.RoleAdmin, OrgCode: "SCH-OAK-AAAAAA"}, -time.Minute)
	require.NoError(t, err)

	forger := auth.NewJWTService(auth.JWTConfig{SecretKey: "other-secret", TokenIssuer: "rollcall.test", Now: func() time.Time { return now }})
	forged, _, err := forger.IssueAccessToken(auth.Identity{Username: "admin", Role: models.RoleAdmin, OrgCode: "SCH-OAK-AAAAAA"})
	require.NoError(t, err)

	var bodies []string
	for _, token := range []string{"", "not-a-jwt", expired, forged} {
		w := get(router, "/me", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		bodies = append(bodies, w.Body.String())
	}
	for _, body := range bodies {
		assert.Contains(t, body, `"code":"AUTH_008"`)
		assert.Contains(t, body, `"message":"Not authenticated"`)
	}
}
