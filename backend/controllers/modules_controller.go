package controllers

import (
	"errors"
	"strconv"

	"academy/backend/config"
	"academy/backend/middleware"
	"academy/backend/models"
	"academy/backend/services"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ModulesController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *services.ProgressService
}

func NewModulesController(db *gorm.DB, cfg *config.Config, progress *services.ProgressService) *ModulesController {
	return &ModulesController{DB: db, Cfg: cfg, Progress: progress}
}

// GetModule godoc
// @Summary Module detail
// @Description Returns a module with its quiz questions, the caller's progress and the quiz gate
// @Tags modules
// @Produce json
// @Param id path int true "Module ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /modules/{id} [get]
func (mc *ModulesController) GetModule(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	moduleID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid module ID")
	}

	var module models.Module
	if err := mc.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_number")
	}).First(&module, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Module not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	// The linear gating chain is enforced here too, not just rendered
	// on the dashboard.
	var modules []models.Module
	if err := mc.DB.Order("order_number").Find(&modules).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	byModule, err := mc.Progress.ProgressMap(claims.UserID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	unlocked := services.UnlockStates(modules, byModule)
	for i := range modules {
		if modules[i].ID == module.ID && !unlocked[i] {
			return utils.Forbidden(c, "Module is locked")
		}
	}

	var progress *models.UserProgress
	if row, ok := byModule[module.ID]; ok {
		progress = &row
	}

	questions := make([]fiber.Map, 0, len(module.Questions))
	for _, q := range module.Questions {
		questions = append(questions, fiber.Map{
			"id":             q.ID,
			"question_text":  q.QuestionText,
			"option_a":       q.OptionA,
			"option_b":       q.OptionB,
			"option_c":       q.OptionC,
			"option_d":       q.OptionD,
			"correct_answer": q.CorrectAnswer,
			"order_number":   q.OrderNumber,
		})
	}

	viewTime := 0
	if progress != nil {
		viewTime = progress.ViewTimeSeconds
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"module": fiber.Map{
			"id":           module.ID,
			"order_number": module.OrderNumber,
			"title":        module.Title,
			"description":  module.Description,
			"embed_url":    module.EmbedURL,
		},
		"questions":         questions,
		"progress":          progress,
		"view_time_seconds": viewTime,
		"min_view_time":     services.MinQuizViewTime,
		"can_start_quiz":    viewTime >= services.MinQuizViewTime,
	})
}
