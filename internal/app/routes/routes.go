package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/rollcall/internal/app/auth"
	"github.com/yigit/rollcall/internal/app/controllers"
	"github.com/yigit/rollcall/internal/app/models/dto"
	"github.com/yigit/rollcall/internal/middleware"
	"github.com/yigit/rollcall/internal/pkg/metrics"
)

// Controllers groups every handler the router mounts
type Controllers struct {
	Auth          *controllers.AuthController
	Organizations *controllers.OrganizationController
	Accounts      *controllers.AccountController
	Invites       *controllers.InviteController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/ping", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, "pong"))
	})

	// --- Public routes ---
	v1.POST("/organizations/register", c.Organizations.Register)
	v1.POST("/auth/token", c.Auth.Login)

	invites := v1.Group("/teacher-invites")
	{
		invites.POST("/register", c.Invites.Register)
		invites.GET("/:token", c.Invites.Verify)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	me := authenticated.Group("/users/me")
	{
		me.GET("", authMiddleware.RequirePermission(appauth.ObjectProfile, appauth.ActionRead), c.Auth.Me)
		me.PUT("/password", authMiddleware.RequirePermission(appauth.ObjectProfile, appauth.ActionUpdate), c.Auth.ChangePassword)
		me.PUT("/profile-picture", authMiddleware.RequirePermission(appauth.ObjectProfile, appauth.ActionUpdate), c.Auth.UpdateProfilePicture)
		me.POST("/profile-picture", authMiddleware.RequirePermission(appauth.ObjectProfile, appauth.ActionUpdate), c.Auth.UploadProfilePicture)
	}

	// Admin routes, scoped to the caller's organization
	admin := authenticated.Group("/admin")
	{
		admin.POST("/users", authMiddleware.RequirePermission(appauth.ObjectAccounts, appauth.ActionCreate), c.Accounts.Create)
		admin.GET("/users", authMiddleware.RequirePermission(appauth.ObjectAccounts, appauth.ActionList), c.Accounts.List)
		admin.POST("/users/:username/password", authMiddleware.RequirePermission(appauth.ObjectAccounts, appauth.ActionResetPassword), c.Accounts.ResetPassword)

		admin.GET("/organizations", authMiddleware.RequirePermission(appauth.ObjectOrganizations, appauth.ActionList), c.Organizations.List)

		admin.POST("/teacher-invites", authMiddleware.RequirePermission(appauth.ObjectInvites, appauth.ActionIssue), c.Invites.Issue)
		admin.GET("/teacher-invites", authMiddleware.RequirePermission(appauth.ObjectInvites, appauth.ActionList), c.Invites.List)
		admin.DELETE("/teacher-invites/:token", authMiddleware.RequirePermission(appauth.ObjectInvites, appauth.ActionRevoke), c.Invites.Revoke)
	}
}
