package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"academy/backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotEligible is returned while any module is still unpassed.
var ErrNotEligible = errors.New("not all modules are completed yet")

const verificationCodePrefix = "AIA"

// CertificateService issues the course certificate exactly once per
// user. The unique constraint on certificates.user_id is the final
// arbiter under concurrent requests.
type CertificateService struct {
	DB *gorm.DB

	newCode func() string
}

func NewCertificateService(db *gorm.DB) *CertificateService {
	return &CertificateService{DB: db, newCode: newVerificationCode}
}

// Eligibility holds the completion count reported alongside
// ErrNotEligible for progress display.
type Eligibility struct {
	CompletedModules int
	TotalModules     int
}

// IssueOrFetch returns the user's certificate, creating it if all
// modules are passed and none exists yet. An existing certificate is
// returned unchanged; the average score is never recomputed.
func (svc *CertificateService) IssueOrFetch(userID string, modules []models.Module) (*models.Certificate, *Eligibility, error) {
	var rows []models.UserProgress
	if err := svc.DB.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	byModule := make(map[uint]models.UserProgress, len(rows))
	for _, row := range rows {
		byModule[row.ModuleID] = row
	}

	completed := 0
	for _, module := range modules {
		if progress, ok := byModule[module.ID]; ok && ModulePassed(&progress) {
			completed++
		}
	}
	if completed < len(modules) || len(modules) == 0 {
		return nil, &Eligibility{CompletedModules: completed, TotalModules: len(modules)}, ErrNotEligible
	}

	var existing models.Certificate
	err := svc.DB.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return &existing, nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	average := averageScore(rows)
	for attempt := 0; attempt < 3; attempt++ {
		certificate := models.Certificate{
			UserID:           userID,
			VerificationCode: svc.newCode(),
			AverageScore:     average,
		}
		err := svc.DB.Create(&certificate).Error
		if err == nil {
			return &certificate, nil, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, err
		}

		// Either we lost the race on user_id, or the random code
		// collided. Converge on the existing row in the first case,
		// retry with a fresh code in the second.
		err = svc.DB.Where("user_id = ?", userID).First(&existing).Error
		if err == nil {
			return &existing, nil, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
	}
	return nil, nil, errors.New("could not allocate a verification code")
}

// Fetch returns the user's certificate without issuing one.
func (svc *CertificateService) Fetch(userID string) (*models.Certificate, error) {
	var certificate models.Certificate
	err := svc.DB.Where("user_id = ?", userID).First(&certificate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &certificate, nil
}

func newVerificationCode() string {
	code := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("%s-%s", verificationCodePrefix, code)
}

func averageScore(rows []models.UserProgress) int {
	if len(rows) == 0 {
		return 0
	}
	sum := 0
	for _, row := range rows {
		if row.QuizScore != nil {
			sum += *row.QuizScore
		}
	}
	return int(math.Round(float64(sum) / float64(len(rows))))
}
