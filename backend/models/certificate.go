package models

import "time"

// Certificate is issued once per user after all modules are passed and
// is immutable afterwards; re-requests return the existing row.
type Certificate struct {
	ID               uint   `gorm:"primaryKey"`
	UserID           string `gorm:"size:36;not null;uniqueIndex"`
	VerificationCode string `gorm:"unique;not null"`
	AverageScore     int
	IssuedAt         time.Time `gorm:"autoCreateTime"`
}
