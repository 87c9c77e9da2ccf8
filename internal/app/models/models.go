package models

import "strings"

// RoleType defines the account role within an organization
type RoleType string

const (
	RoleAdmin   RoleType = "admin"
	RoleTeacher RoleType = "teacher"
)

// Valid reports whether r is one of the known roles.
func (r RoleType) Valid() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// ParseRole normalizes user input into a RoleType. The result may be invalid.
func ParseRole(s string) RoleType {
	return RoleType(strings.ToLower(strings.TrimSpace(s)))
}

// InstitutionType defines the kind of organization
type InstitutionType string

const (
	InstitutionSchool  InstitutionType = "school"
	InstitutionCollege InstitutionType = "college"
)

// Valid reports whether t is one of the known institution types.
func (t InstitutionType) Valid() bool {
	return t == InstitutionSchool || t == InstitutionCollege
}

// ParseInstitutionType normalizes user input into an InstitutionType. The result may be invalid.
func ParseInstitutionType(s string) InstitutionType {
	return InstitutionType(strings.ToLower(strings.TrimSpace(s)))
}

// NormalizeOrgCode upper-cases and trims a user supplied organization code.
func NormalizeOrgCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
