package dto

import (
	"time"

	"github.com/yigit/rollcall/internal/app/models"
)

// RegisterOrganizationRequest creates an organization and its first admin.
// Registration keeps the snake_case field names of the public contract.
type RegisterOrganizationRequest struct {
	InstitutionName string `json:"institution_name" binding:"required,max=255"`
	InstitutionType string `json:"institution_type" binding:"required,institution_type"`
	Email           string `json:"email" binding:"required,email"`
	AdminUsername   string `json:"admin_username" binding:"required,max=100,username"`
	AdminPassword   string `json:"admin_password" binding:"required,min=6,max=256"`
}

// OrganizationResponse is the public view of an organization
type OrganizationResponse struct {
	OrgCode         string    `json:"orgCode" example:"SCH-OAK-7KQ2ZD"`
	InstitutionName string    `json:"institutionName"`
	InstitutionType string    `json:"institutionType" example:"school"`
	Email           string    `json:"email"`
	CreatedAt       time.Time `json:"createdAt"`
}

// RegisterOrganizationResponse is returned after a successful registration
type RegisterOrganizationResponse struct {
	OrgCode         string `json:"org_code" example:"SCH-OAKRID-7KQ2ZD"`
	InstitutionName string `json:"institution_name"`
	InstitutionType string `json:"institution_type" example:"school"`
	Email           string `json:"email"`
	AdminUsername   string `json:"admin_username"`
	Message         string `json:"message"`
}

// NewRegisterOrganizationResponse maps a registration outcome
func NewRegisterOrganizationResponse(org *models.Organization, adminUsername, message string) RegisterOrganizationResponse {
	return RegisterOrganizationResponse{
		OrgCode:         org.OrgCode,
		InstitutionName: org.InstitutionName,
		InstitutionType: string(org.InstitutionType),
		Email:           org.Email,
		AdminUsername:   adminUsername,
		Message:         message,
	}
}

// NewOrganizationResponse maps a model to its response
func NewOrganizationResponse(org *models.Organization) OrganizationResponse {
	return OrganizationResponse{
		OrgCode:         org.OrgCode,
		InstitutionName: org.InstitutionName,
		InstitutionType: string(org.InstitutionType),
		Email:           org.Email,
		CreatedAt:       org.CreatedAt,
	}
}

// NewOrganizationList maps a page of organizations
func NewOrganizationList(orgs []*models.Organization) []OrganizationResponse {
	out := make([]OrganizationResponse, 0, len(orgs))
	for _, org := range orgs {
		out = append(out, NewOrganizationResponse(org))
	}
	return out
}
