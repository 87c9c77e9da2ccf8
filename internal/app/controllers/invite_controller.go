package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/rollcall/internal/app/models/dto"
	"github.com/yigit/rollcall/internal/app/services"
	"github.com/yigit/rollcall/internal/middleware"
)

// InviteController handles the teacher invite lifecycle
type InviteController struct {
	inviteService *services.InviteService
	logger        zerolog.Logger
}

// NewInviteController creates a new InviteController
func NewInviteController(inviteService *services.InviteService, logger zerolog.Logger) *InviteController {
	return &InviteController{inviteService: inviteService, logger: logger}
}

// Issue creates an invite for the admin's organization
// @Summary Issue teacher invite
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.APIResponse{data=dto.IssuedInviteResponse}
// @Router /admin/teacher-invites [post]
func (c *InviteController) Issue(ctx *gin.Context) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, errUnauthenticated)
		return
	}

	issued, err := c.inviteService.Issue(ctx.Request.Context(), claims.OrgCode)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewIssuedInviteResponse(issued.Invite, issued.URL, issued.TTL), "Invite issued"))
}

// List returns every invite of the admin's organization
// @Summary List teacher invites
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.InviteResponse}
// @Router /admin/teacher-invites [get]
func (c *InviteController) List(ctx *gin.Context) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, errUnauthenticated)
		return
	}

	invites, err := c.inviteService.List(ctx.Request.Context(), claims.OrgCode)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	out := make([]dto.InviteResponse, 0, len(invites))
	for _, info := range invites {
		out = append(out, dto.NewInviteResponse(info.Invite, nil, info.Status))
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(out, ""))
}

// Revoke deletes an invite
// @Summary Revoke teacher invite
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param token path string true "Invite token"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/teacher-invites/{token} [delete]
func (c *InviteController) Revoke(ctx *gin.Context) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, errUnauthenticated)
		return
	}

	if err := c.inviteService.Revoke(ctx.Request.Context(), claims.OrgCode, ctx.Param("token")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Invite revoked"))
}

// Verify reports whether an invite can still be used
// @Summary Verify teacher invite
// @Tags invites
// @Produce json
// @Param token path string true "Invite token"
// @Success 200 {object} dto.APIResponse{data=dto.InviteResponse}
// @Failure 400 {object} dto.ErrorResponse "Used or expired"
// @Failure 404 {object} dto.ErrorResponse
// @Router /teacher-invites/{token} [get]
func (c *InviteController) Verify(ctx *gin.Context) {
	info, err := c.inviteService.Verify(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewInviteResponse(info.Invite, info.Organization, info.Status), "Invite is valid"))
}

// Register creates a teacher account through an invite
// @Summary Register via teacher invite
// @Tags invites
// @Accept json
// @Produce json
// @Param request body dto.ConsumeInviteRequest true "Teacher details"
// @Success 201 {object} dto.APIResponse{data=dto.TeacherRegisteredResponse}
// @Failure 400 {object} dto.ErrorResponse "Used, expired, or username taken"
// @Failure 404 {object} dto.ErrorResponse
// @Router /teacher-invites/register [post]
func (c *InviteController) Register(ctx *gin.Context) {
	var req dto.ConsumeInviteRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	account, org, err := c.inviteService.Consume(ctx.Request.Context(), services.ConsumeInviteInput{
		Token:         req.Token,
		Name:          req.Name,
		Username:      req.Username,
		Password:      req.Password,
		ClassDivision: req.ClassDivision,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.TeacherRegisteredResponse{Account: dto.NewAccountResponse(account)}
	if org != nil {
		resp.InstitutionName = org.InstitutionName
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Teacher registered"))
}
