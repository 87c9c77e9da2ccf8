package dto

import (
	"time"

	"github.com/yigit/rollcall/internal/app/models"
)

// LoginRequest is the form posted to /auth/token. Fields are not bound as
// required: a missing credential fails like a wrong one.
type LoginRequest struct {
	OrgCode  string `form:"org_code"`
	Username string `form:"username"`
	Password string `form:"password"`
}

// TokenResponse is the OAuth2-style body returned by /auth/token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
	ExpiresIn   int64  `json:"expires_in" example:"1800"`
}

// ChangePasswordRequest lets a signed-in user replace their password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=256"`
}

// ProfilePictureRequest sets or clears the caller's picture reference
type ProfilePictureRequest struct {
	ProfilePicture string `json:"profilePicture" binding:"omitempty,max=1024"`
}

// ProfilePictureUploadResponse returns the stored picture URL with the updated account
type ProfilePictureUploadResponse struct {
	ProfilePictureURL string          `json:"profilePictureUrl"`
	Account           AccountResponse `json:"account"`
}

// MeResponse describes the signed-in account and its organization
type MeResponse struct {
	Username        string    `json:"username"`
	Role            string    `json:"role"`
	OrgCode         string    `json:"orgCode"`
	InstitutionName string    `json:"institutionName"`
	InstitutionType string    `json:"institutionType"`
	DisplayName     *string   `json:"displayName,omitempty"`
	ClassDivision   *string   `json:"classDivision,omitempty"`
	ProfilePicture  *string   `json:"profilePicture,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// NewMeResponse builds the /users/me body
func NewMeResponse(account *models.Account, org *models.Organization) MeResponse {
	return MeResponse{
		Username:        account.Username,
		Role:            string(account.Role),
		OrgCode:         org.OrgCode,
		InstitutionName: org.InstitutionName,
		InstitutionType: string(org.InstitutionType),
		DisplayName:     account.DisplayName,
		ClassDivision:   account.ClassDivision,
		ProfilePicture:  account.ProfilePicture,
		CreatedAt:       account.CreatedAt,
	}
}
