package models

import "time"

// UserProgress holds per-(user, module) course progress. One row per
// pair, created on the first view-time save or quiz submission and
// updated in place afterwards.
type UserProgress struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          string `gorm:"size:36;not null;uniqueIndex:idx_user_module"`
	ModuleID        uint   `gorm:"not null;uniqueIndex:idx_user_module"`
	ViewTimeSeconds int    `gorm:"default:0"`
	QuizScore       *int
	QuizCompleted   bool `gorm:"default:false"`
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName keeps the uncountable noun singular instead of gorm's
// pluralized default.
func (UserProgress) TableName() string {
	return "user_progress"
}

// Module status values derived from a progress row.
const (
	ModuleNotStarted = "not_started"
	ModuleInProgress = "in_progress"
	ModuleCompleted  = "completed"
)
