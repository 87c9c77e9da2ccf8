package models

import "time"

// InviteStatus is derived at read time and never stored
type InviteStatus string

const (
	InviteActive  InviteStatus = "active"
	InviteUsed    InviteStatus = "used"
	InviteExpired InviteStatus = "expired"
)

// Invite defines a single-use teacher invite based on the 'teacher_invites' table
type Invite struct {
	ID        int64      `json:"id" db:"id"`
	Token     string     `json:"token" db:"token"`
	OrgCode   string     `json:"orgCode" db:"org_code"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	ExpiresAt time.Time  `json:"expiresAt" db:"expires_at"`
	Used      bool       `json:"used" db:"used"`
	UsedAt    *time.Time `json:"usedAt,omitempty" db:"used_at"`
	UsedBy    *string    `json:"usedBy,omitempty" db:"used_by"`
}

// StatusAt classifies the invite at the given instant.
// An invite is usable only while it is unused and now is not after ExpiresAt.
func (i *Invite) StatusAt(now time.Time) InviteStatus {
	return InviteStatusAt(i.Used, i.ExpiresAt, now)
}

// InviteStatusAt is the pure status function shared by every invite read path.
func InviteStatusAt(used bool, expiresAt, now time.Time) InviteStatus {
	switch {
	case used:
		return InviteUsed
	case now.After(expiresAt):
		return InviteExpired
	default:
		return InviteActive
	}
}
