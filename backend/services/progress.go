package services

import (
	"errors"
	"time"

	"academy/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// PassingScore is the minimum quiz score that completes a module.
	PassingScore = 70

	// MinQuizViewTime is how long (seconds) a module presentation must
	// have been watched before its quiz opens.
	MinQuizViewTime = 120

	// MaxViewTimeSeconds caps a single view-time value at one day.
	MaxViewTimeSeconds = 86400
)

var (
	ErrInvalidViewTime = errors.New("view time out of range")
	ErrInvalidScore    = errors.New("score out of range")
)

// ProgressService records per-module view time and quiz results and
// derives the linear unlock chain.
type ProgressService struct {
	DB *gorm.DB
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{DB: db}
}

// RecordViewTime upserts the view time for (userID, moduleID). Only the
// view_time_seconds column is written on conflict, so quiz fields are
// never clobbered by the page-unload beacon. Writes are last-write-wins
// and safe to replay, which tolerates duplicate or out-of-order beacon
// delivery.
func (svc *ProgressService) RecordViewTime(userID string, moduleID uint, seconds int) error {
	if seconds < 0 || seconds > MaxViewTimeSeconds {
		return ErrInvalidViewTime
	}

	progress := models.UserProgress{
		UserID:          userID,
		ModuleID:        moduleID,
		ViewTimeSeconds: seconds,
	}
	return svc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"view_time_seconds", "updated_at"}),
	}).Create(&progress).Error
}

// RecordQuizScore upserts the latest submitted score. It always records
// what it is given; a "keep only the best score" policy is the caller's
// decision, not this primitive's. completed_at is stamped only on a
// passing score and cleared otherwise.
func (svc *ProgressService) RecordQuizScore(userID string, moduleID uint, score int) (bool, error) {
	if score < 0 || score > 100 {
		return false, ErrInvalidScore
	}

	passing := score >= PassingScore
	var completedAt *time.Time
	if passing {
		now := time.Now().UTC()
		completedAt = &now
	}

	progress := models.UserProgress{
		UserID:        userID,
		ModuleID:      moduleID,
		QuizScore:     &score,
		QuizCompleted: passing,
		CompletedAt:   completedAt,
	}
	err := svc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quiz_score", "quiz_completed", "completed_at", "updated_at"}),
	}).Create(&progress).Error
	return passing, err
}

// Get returns the progress row for (userID, moduleID), or nil when none
// exists yet.
func (svc *ProgressService) Get(userID string, moduleID uint) (*models.UserProgress, error) {
	var progress models.UserProgress
	err := svc.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &progress, nil
}

// ProgressMap loads all progress rows of a user keyed by module ID.
func (svc *ProgressService) ProgressMap(userID string) (map[uint]models.UserProgress, error) {
	var rows []models.UserProgress
	if err := svc.DB.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	byModule := make(map[uint]models.UserProgress, len(rows))
	for _, row := range rows {
		byModule[row.ModuleID] = row
	}
	return byModule, nil
}

// ModulePassed reports whether a progress row completes its module.
func ModulePassed(progress *models.UserProgress) bool {
	return progress != nil && progress.QuizCompleted &&
		progress.QuizScore != nil && *progress.QuizScore >= PassingScore
}

// UnlockStates computes the gating chain over modules ordered by
// OrderNumber: the first module is always unlocked, every later one
// only once its predecessor's quiz is passed.
func UnlockStates(modules []models.Module, byModule map[uint]models.UserProgress) []bool {
	unlocked := make([]bool, len(modules))
	for i := range modules {
		if i == 0 {
			unlocked[i] = true
			continue
		}
		prev, ok := byModule[modules[i-1].ID]
		unlocked[i] = ok && ModulePassed(&prev)
	}
	return unlocked
}

// ModuleStatus derives the display status of a module from its progress
// row (which may be nil).
func ModuleStatus(progress *models.UserProgress) string {
	switch {
	case ModulePassed(progress):
		return models.ModuleCompleted
	case progress != nil && (progress.ViewTimeSeconds > 0 || progress.QuizScore != nil):
		return models.ModuleInProgress
	default:
		return models.ModuleNotStarted
	}
}
