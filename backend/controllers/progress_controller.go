package controllers

import (
	"errors"

	"academy/backend/config"
	"academy/backend/middleware"
	"academy/backend/models"
	"academy/backend/services"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *services.ProgressService
}

func NewProgressController(db *gorm.DB, cfg *config.Config, progress *services.ProgressService) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Progress: progress}
}

// SaveViewTime godoc
// @Summary Save module view time
// @Description Upserts accumulated view time for a module; quiz fields are preserved
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/view [post]
func (pc *ProgressController) SaveViewTime(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	var input struct {
		ModuleID        uint `json:"module_id"`
		ViewTimeSeconds *int `json:"view_time_seconds"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.ModuleID == 0 || input.ViewTimeSeconds == nil {
		return utils.BadRequest(c, "module_id and view_time_seconds are required")
	}

	err := pc.Progress.RecordViewTime(claims.UserID, input.ModuleID, *input.ViewTimeSeconds)
	if err != nil {
		if errors.Is(err, services.ErrInvalidViewTime) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalServerError(c, "Could not save progress")
	}

	return c.JSON(fiber.Map{"success": true})
}

// SubmitQuiz godoc
// @Summary Submit a quiz score
// @Description Records the latest score; passing (>=70) completes the module
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/quiz [post]
func (pc *ProgressController) SubmitQuiz(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	var input struct {
		ModuleID  uint `json:"module_id"`
		QuizScore *int `json:"quiz_score"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.ModuleID == 0 || input.QuizScore == nil {
		return utils.BadRequest(c, "module_id and quiz_score are required")
	}

	passing, err := pc.Progress.RecordQuizScore(claims.UserID, input.ModuleID, *input.QuizScore)
	if err != nil {
		if errors.Is(err, services.ErrInvalidScore) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalServerError(c, "Could not save score")
	}

	return c.JSON(fiber.Map{"success": true, "is_passing": passing})
}

// GetDashboard godoc
// @Summary Course dashboard
// @Description Lists all modules with unlock state, status and progress
// @Tags progress
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) GetDashboard(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	var modules []models.Module
	if err := pc.DB.Order("order_number").Find(&modules).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	byModule, err := pc.Progress.ProgressMap(claims.UserID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	unlocked := services.UnlockStates(modules, byModule)

	result := make([]fiber.Map, 0, len(modules))
	completedCount := 0
	for i, module := range modules {
		var progress *models.UserProgress
		if row, ok := byModule[module.ID]; ok {
			progress = &row
		}

		status := services.ModuleStatus(progress)
		if status == models.ModuleCompleted {
			completedCount++
		}

		entry := fiber.Map{
			"id":           module.ID,
			"order_number": module.OrderNumber,
			"title":        module.Title,
			"description":  module.Description,
			"is_unlocked":  unlocked[i],
			"status":       status,
		}
		if progress != nil {
			entry["view_time_seconds"] = progress.ViewTimeSeconds
			entry["quiz_score"] = progress.QuizScore
			entry["quiz_completed"] = progress.QuizCompleted
			entry["completed_at"] = progress.CompletedAt
		}
		result = append(result, entry)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"modules":           result,
		"total_modules":     len(modules),
		"completed_modules": completedCount,
	})
}
