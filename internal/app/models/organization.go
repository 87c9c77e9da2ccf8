package models

import "time"

// Organization defines the organization model based on the 'organizations' table.
// Organizations are immutable after registration.
type Organization struct {
	ID              int64           `json:"id" db:"id"`
	OrgCode         string          `json:"orgCode" db:"org_code" example:"SCH-STMARY-AB12CD"`
	InstitutionName string          `json:"institutionName" db:"institution_name" example:"St. Mary's School"`
	InstitutionType InstitutionType `json:"institutionType" db:"institution_type" example:"school"`
	Email           string          `json:"email" db:"email" example:"office@stmarys.example"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}
