package dto

import (
	"time"

	"github.com/yigit/rollcall/internal/app/models"
)

// CreateAccountRequest is an admin creating an account in their organization
type CreateAccountRequest struct {
	Username      string `json:"username" binding:"required,max=100,username"`
	Password      string `json:"password" binding:"required,min=6,max=256"`
	Role          string `json:"role" binding:"required,role"`
	DisplayName   string `json:"displayName" binding:"omitempty,max=255"`
	ClassDivision string `json:"classDivision" binding:"omitempty,max=100"`
}

// ResetPasswordRequest is an admin setting another account's password
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=6,max=256"`
}

// AccountResponse is the outward view of an account. The password digest is never exposed.
type AccountResponse struct {
	Username       string    `json:"username"`
	Role           string    `json:"role"`
	OrgCode        string    `json:"orgCode"`
	DisplayName    *string   `json:"displayName,omitempty"`
	ClassDivision  *string   `json:"classDivision,omitempty"`
	ProfilePicture *string   `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewAccountResponse maps a model to its response
func NewAccountResponse(account *models.Account) AccountResponse {
	return AccountResponse{
		Username:       account.Username,
		Role:           string(account.Role),
		OrgCode:        account.OrgCode,
		DisplayName:    account.DisplayName,
		ClassDivision:  account.ClassDivision,
		ProfilePicture: account.ProfilePicture,
		CreatedAt:      account.CreatedAt,
	}
}

// NewAccountList maps a page of accounts
func NewAccountList(accounts []*models.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, NewAccountResponse(account))
	}
	return out
}
