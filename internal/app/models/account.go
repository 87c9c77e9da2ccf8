package models

import (
	"time"
)

// PasswordScheme tags the algorithm a stored password hash was produced with
type PasswordScheme string

const (
	// SchemeBcrypt is bcrypt over the UTF-8 bytes of the password cut at 72 bytes.
	SchemeBcrypt PasswordScheme = "bcrypt"
	// SchemeBcryptRune72 is bcrypt over the first 72 characters of the password.
	// Hashes of this kind were written before byte-level truncation and are only verified.
	SchemeBcryptRune72 PasswordScheme = "bcrypt-rune72"
	// SchemeSHA256 is an unsalted hex SHA-256 digest. Verified only.
	SchemeSHA256 PasswordScheme = "sha256"
)

// PasswordDigest is a stored password hash together with its scheme
type PasswordDigest struct {
	Scheme PasswordScheme `json:"-" db:"password_scheme"`
	Hash   string         `json:"-" db:"password_hash"`
}

// Account defines the account model based on the 'accounts' table.
// Usernames are unique within an organization, not globally.
type Account struct {
	ID             int64          `json:"id" db:"id" example:"1"`
	OrgCode        string         `json:"orgCode" db:"org_code" example:"SCH-STMARY-AB12CD"`
	Username       string         `json:"username" db:"username" example:"admin"`
	Password       PasswordDigest `json:"-"`
	Role           RoleType       `json:"role" db:"role" example:"teacher"`
	DisplayName    *string        `json:"displayName,omitempty" db:"display_name" example:"Jane Doe"`
	ClassDivision  *string        `json:"classDivision,omitempty" db:"class_division" example:"10-A"`
	ProfilePicture *string        `json:"profilePicture,omitempty" db:"profile_picture" example:"avatars/jane.png"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the account carries the admin role
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
