package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/rollcall/internal/app/models/dto"
	"github.com/yigit/rollcall/internal/app/services"
	"github.com/yigit/rollcall/internal/middleware"
)

// AccountController handles admin management of accounts in their own organization
type AccountController struct {
	accountService *services.AccountService
	logger         zerolog.Logger
}

// NewAccountController creates a new AccountController
func NewAccountController(accountService *services.AccountService, logger zerolog.Logger) *AccountController {
	return &AccountController{accountService: accountService, logger: logger}
}

// Create adds an account to the admin's organization
// @Summary Create account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.APIResponse{data=dto.AccountResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed or username taken"
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/users [post]
func (c *AccountController) Create(ctx *gin.Context) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, errUnauthenticated)
		return
	}

	var req dto.CreateAccountRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	account, err := c.accountService.Create(ctx.Request.Context(), claims.OrgCode, services.CreateAccountInput{
		Username:      req.Username,
		Password:      req.Password,
		Role:          req.Role,
		DisplayName:   req.DisplayName,
		ClassDivision: req.ClassDivision,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewAccountResponse(account), "Account created"))
}

// List returns a page of the organization's accounts
// @Summary List accounts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /admin/users [get]
func (c *AccountController) List(ctx *gin.Context) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, errUnauthenticated)
		return
	}

	offset, limit, info := paginate(ctx)
	accounts, total, err := c.accountService.List(ctx.Request.Context(), claims.OrgCode, offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      dto.NewAccountList(accounts),
		Pagination: info(total),
	}, ""))
}

// ResetPassword sets a new password for an account in the admin's organization
// @Summary Reset password
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param request body dto.ResetPasswordRequest true "New password"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{username}/password [post]
func (c *AccountController) ResetPassword(ctx *gin.Context) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, errUnauthenticated)
		return
	}

	var req dto.ResetPasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	username := ctx.Param("username")
	if err := c.accountService.ResetPassword(ctx.Request.Context(), claims.OrgCode, username, req.NewPassword); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Str("org_code", claims.OrgCode).Str("admin", claims.Username()).Str("username", username).Msg("Password reset by admin")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Password reset"))
}
