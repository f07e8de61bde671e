package models

import "time"

// Module is a content unit of the course. Modules form a strict linear
// sequence by OrderNumber; authoring happens outside this application so
// the rows are read-only here.
type Module struct {
	ID          uint   `gorm:"primaryKey"`
	OrderNumber int    `gorm:"unique;not null"`
	Title       string `gorm:"not null"`
	Description string
	EmbedURL    string `gorm:"not null"`
	CreatedAt   time.Time

	Questions []Question
}

type Question struct {
	ID            uint   `gorm:"primaryKey"`
	ModuleID      uint   `gorm:"not null;index"`
	QuestionText  string `gorm:"not null"`
	OptionA       string `gorm:"not null"`
	OptionB       string `gorm:"not null"`
	OptionC       string `gorm:"not null"`
	OptionD       string `gorm:"not null"`
	CorrectAnswer string `gorm:"size:1;not null"` // A, B, C or D
	OrderNumber   int
}
