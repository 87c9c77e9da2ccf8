package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/rollcall/internal/app/models/dto"
	"github.com/yigit/rollcall/internal/app/services"
	"github.com/yigit/rollcall/internal/middleware"
)

// OrganizationController handles organization registration and listing
type OrganizationController struct {
	orgService *services.OrganizationService
	logger     zerolog.Logger
}

// NewOrganizationController creates a new OrganizationController
func NewOrganizationController(orgService *services.OrganizationService, logger zerolog.Logger) *OrganizationController {
	return &OrganizationController{orgService: orgService, logger: logger}
}

// Register creates an organization with its admin account
// @Summary Register an organization
// @Description Creates the organization, generates its code and creates the admin account in one step
// @Tags organizations
// @Accept json
// @Produce json
// @Param request body dto.RegisterOrganizationRequest true "Organization and admin details"
// @Success 201 {object} dto.APIResponse{data=dto.RegisterOrganizationResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed or email already registered"
// @Router /organizations/register [post]
func (c *OrganizationController) Register(ctx *gin.Context) {
	var req dto.RegisterOrganizationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	reg, err := c.orgService.Register(ctx.Request.Context(), services.RegisterOrganizationInput{
		InstitutionName: req.InstitutionName,
		InstitutionType: req.InstitutionType,
		Email:           req.Email,
		AdminUsername:   req.AdminUsername,
		AdminPassword:   req.AdminPassword,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("Organization registration failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	const message = "Organization registered. Sign in with the organization code and admin credentials."
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(
		dto.NewRegisterOrganizationResponse(reg.Organization, reg.AdminUsername, message),
		message,
	))
}

// List returns a page of organizations
// @Summary List organizations
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /admin/organizations [get]
func (c *OrganizationController) List(ctx *gin.Context) {
	offset, limit, info := paginate(ctx)
	orgs, total, err := c.orgService.List(ctx.Request.Context(), offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      dto.NewOrganizationList(orgs),
		Pagination: info(total),
	}, ""))
}
