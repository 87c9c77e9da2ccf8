// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/rollcall/internal/app/models/dto"
	"github.com/yigit/rollcall/internal/app/services"
	"github.com/yigit/rollcall/internal/middleware"
	"github.com/yigit/rollcall/internal/pkg/filestorage"
)

const profilePictureDir = "profile_pictures"

// AuthController handles sign-in and the caller's own account
type AuthController struct {
	authService    *services.AuthService
	accountService *services.AccountService
	files          filestorage.FileStorage
	logger         zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, accountService *services.AccountService, files filestorage.FileStorage, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService:    authService,
		accountService: accountService,
		files:          files,
		logger:         logger,
	}
}

// Login handles user login
// @Summary Obtain an access token
// @Description Form-encoded sign-in with organization code, username and password
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param org_code formData string true "Organization code"
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid or missing credentials"
// @Router /auth/token [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindForm(ctx, &req) {
		return
	}

	result, err := c.authService.Login(ctx.Request.Context(), services.LoginInput{
		OrgCode:  req.OrgCode,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Cache-Control", "no-store")
	ctx.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(result.ExpiresIn.Seconds()),
	})
}

// Me returns the signed-in account
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MeResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, errUnauthenticated)
		return
	}

	account, org, err := c.authService.Me(ctx.Request.Context(), claims)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewMeResponse(account, org), "Authenticated"))
}

// ChangePassword replaces the caller's password
// @Summary Change own password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Current password is incorrect"
// @Router /users/me/password [put]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, errUnauthenticated)
		return
	}

	var req dto.ChangePasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.accountService.ChangePassword(ctx.Request.Context(), claims.OrgCode, claims.Username(), req.CurrentPassword, req.NewPassword); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Password updated"))
}

// UpdateProfilePicture sets or clears the caller's picture reference
// @Summary Update profile picture
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProfilePictureRequest true "Picture reference, empty to clear"
// @Success 200 {object} dto.APIResponse{data=dto.AccountResponse}
// @Router /users/me/profile-picture [put]
func (c *AuthController) UpdateProfilePicture(ctx *gin.Context) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, errUnauthenticated)
		return
	}

	var req dto.ProfilePictureRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	account, err := c.accountService.UpdateProfilePicture(ctx.Request.Context(), claims.OrgCode, claims.Username(), req.ProfilePicture)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewAccountResponse(account), "Profile picture updated"))
}

// UploadProfilePicture stores an uploaded image and points the caller's picture at it
// @Summary Upload profile picture
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "JPEG, PNG, GIF or WebP image"
// @Success 200 {object} dto.APIResponse{data=dto.ProfilePictureUploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing or unsupported file"
// @Router /users/me/profile-picture [post]
func (c *AuthController) UploadProfilePicture(ctx *gin.Context) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, errUnauthenticated)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, filestorage.ErrNoFile)
		return
	}

	previous, err := c.accountService.FindByOrgAndUsername(ctx.Request.Context(), claims.OrgCode, claims.Username())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	url, err := c.files.SaveFile(ctx.Request.Context(), fileHeader, profilePictureDir)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	account, err := c.accountService.UpdateProfilePicture(ctx.Request.Context(), claims.OrgCode, claims.Username(), url)
	if err != nil {
		_ = c.files.DeleteFile(url)
		middleware.HandleAPIError(ctx, err)
		return
	}

	if previous.ProfilePicture != nil && *previous.ProfilePicture != url {
		if err := c.files.DeleteFile(*previous.ProfilePicture); err != nil {
			c.logger.Warn().Err(err).Str("username", account.Username).Msg("Failed to remove previous profile picture")
		}
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ProfilePictureUploadResponse{
		ProfilePictureURL: url,
		Account:           dto.NewAccountResponse(account),
	}, "Profile picture uploaded"))
}
