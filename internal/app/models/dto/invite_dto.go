package dto

import (
	"time"

	"github.com/yigit/rollcall/internal/app/models"
)

// Invite bodies keep the snake_case field names of the public invite contract.

// ConsumeInviteRequest is a teacher registering through an invite link
type ConsumeInviteRequest struct {
	Token         string `json:"token" binding:"required"`
	Name          string `json:"name" binding:"required,max=255"`
	Username      string `json:"username" binding:"required,max=100,username"`
	Password      string `json:"password" binding:"required,min=6,max=256"`
	ClassDivision string `json:"class_division" binding:"omitempty,max=100"`
}

// IssuedInviteResponse is returned to the admin who issued the invite
type IssuedInviteResponse struct {
	Token            string    `json:"token"`
	InviteURL        string    `json:"invite_url"`
	ExpiresAt        time.Time `json:"expires_at"`
	ExpiresInMinutes int64     `json:"expires_in_minutes" example:"30"`
}

// NewIssuedInviteResponse maps a freshly issued invite
func NewIssuedInviteResponse(invite *models.Invite, inviteURL string, ttl time.Duration) IssuedInviteResponse {
	return IssuedInviteResponse{
		Token:            invite.Token,
		InviteURL:        inviteURL,
		ExpiresAt:        invite.ExpiresAt,
		ExpiresInMinutes: int64(ttl / time.Minute),
	}
}

// InviteResponse describes an invite and its status at read time
type InviteResponse struct {
	Valid           bool       `json:"valid"`
	Token           string     `json:"token"`
	OrgCode         string     `json:"org_code"`
	InstitutionName string     `json:"institution_name,omitempty"`
	InstitutionType string     `json:"institution_type,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
	Used            bool       `json:"used"`
	UsedAt          *time.Time `json:"used_at,omitempty"`
	UsedBy          *string    `json:"used_by,omitempty"`
	Status          string     `json:"status" example:"active" enums:"active,used,expired"`
}

// TeacherRegisteredResponse is returned after a successful invite registration
type TeacherRegisteredResponse struct {
	Account         AccountResponse `json:"account"`
	InstitutionName string          `json:"institution_name,omitempty"`
}

// NewInviteResponse maps an invite. org may be nil when the caller already knows it.
func NewInviteResponse(invite *models.Invite, org *models.Organization, status models.InviteStatus) InviteResponse {
	resp := InviteResponse{
		Valid:     status == models.InviteActive,
		Token:     invite.Token,
		OrgCode:   invite.OrgCode,
		CreatedAt: invite.CreatedAt,
		ExpiresAt: invite.ExpiresAt,
		Used:      invite.Used,
		UsedAt:    invite.UsedAt,
		UsedBy:    invite.UsedBy,
		Status:    string(status),
	}
	if org != nil {
		resp.InstitutionName = org.InstitutionName
		resp.InstitutionType = string(org.InstitutionType)
	}
	return resp
}
