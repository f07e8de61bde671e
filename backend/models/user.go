package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin       = "admin"
	RoleParticipant = "participant"
)

// User status lifecycle: pending/invited -> active <-> inactive.
// An invited user has no password yet; the invite token hash and its
// expiry live on the row itself.
const (
	StatusPending  = "pending"
	StatusInvited  = "invited"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type User struct {
	ID              string `gorm:"primaryKey;size:36"`
	Email           string `gorm:"unique;not null"`
	PasswordHash    string
	FullName        string
	Role            string `gorm:"default:participant"` // participant, admin
	Status          string `gorm:"default:pending"`
	InviteTokenHash *string `gorm:"uniqueIndex"`
	TokenExpiresAt  *time.Time
	ResetTokenHash  *string `gorm:"uniqueIndex"`
	ResetExpiresAt  *time.Time
	InvitedBy       *string `gorm:"size:36"`
	JoinedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Progress     []UserProgress `gorm:"constraint:OnDelete:CASCADE"`
	Certificates []Certificate  `gorm:"constraint:OnDelete:CASCADE"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// InviteExpired reports whether the invite token on this row is past its
// expiry. Rows without an expiry never expire.
func (u *User) InviteExpired(now time.Time) bool {
	return u.TokenExpiresAt != nil && u.TokenExpiresAt.Before(now)
}
