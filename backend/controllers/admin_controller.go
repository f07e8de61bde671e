package controllers

import (
	"errors"
	"sort"
	"time"

	"academy/backend/config"
	"academy/backend/middleware"
	"academy/backend/models"
	"academy/backend/services"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdminController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Invites *services.InviteService
	Resets  *services.PasswordResetService
}

func NewAdminController(db *gorm.DB, cfg *config.Config, invites *services.InviteService, resets *services.PasswordResetService) *AdminController {
	return &AdminController{DB: db, Cfg: cfg, Invites: invites, Resets: resets}
}

// ListMembers godoc
// @Summary List participants
// @Description Returns all participants with completion counts and certificate flags
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/members [get]
func (adm *AdminController) ListMembers(c *fiber.Ctx) error {
	var users []models.User
	if err := adm.DB.Where("role = ?", models.RoleParticipant).
		Order("created_at DESC").Find(&users).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var totalModules int64
	if err := adm.DB.Model(&models.Module{}).Count(&totalModules).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var allProgress []models.UserProgress
	if err := adm.DB.Find(&allProgress).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	var certificates []models.Certificate
	if err := adm.DB.Find(&certificates).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	progressByUser := make(map[string][]models.UserProgress)
	for _, row := range allProgress {
		progressByUser[row.UserID] = append(progressByUser[row.UserID], row)
	}
	hasCertificate := make(map[string]bool, len(certificates))
	for _, cert := range certificates {
		hasCertificate[cert.UserID] = true
	}

	members := make([]fiber.Map, 0, len(users))
	for _, user := range users {
		rows := progressByUser[user.ID]
		completed := 0
		var lastActivity *time.Time
		for i := range rows {
			if services.ModulePassed(&rows[i]) {
				completed++
			}
			if rows[i].CompletedAt != nil && (lastActivity == nil || rows[i].CompletedAt.After(*lastActivity)) {
				lastActivity = rows[i].CompletedAt
			}
		}

		percentage := 0
		if totalModules > 0 {
			percentage = completed * 100 / int(totalModules)
		}

		members = append(members, fiber.Map{
			"id":                  user.ID,
			"email":               user.Email,
			"full_name":           user.FullName,
			"role":                user.Role,
			"status":              user.Status,
			"invited_at":          user.CreatedAt,
			"joined_at":           user.JoinedAt,
			"total_modules":       totalModules,
			"completed_modules":   completed,
			"progress_percentage": percentage,
			"has_certificate":     hasCertificate[user.ID],
			"last_activity":       lastActivity,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"participants": members})
}

// GetMember godoc
// @Summary Participant detail
// @Description Returns one participant with per-module progress and certificate
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/members/{id} [get]
func (adm *AdminController) GetMember(c *fiber.Ctx) error {
	id := c.Params("id")

	var user models.User
	if err := adm.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var modules []models.Module
	if err := adm.DB.Order("order_number").Find(&modules).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	moduleByID := make(map[uint]models.Module, len(modules))
	for _, module := range modules {
		moduleByID[module.ID] = module
	}

	var rows []models.UserProgress
	if err := adm.DB.Where("user_id = ?", id).Find(&rows).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	sort.Slice(rows, func(i, j int) bool {
		return moduleByID[rows[i].ModuleID].OrderNumber < moduleByID[rows[j].ModuleID].OrderNumber
	})

	progress := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		module := moduleByID[row.ModuleID]
		progress = append(progress, fiber.Map{
			"module_id":         row.ModuleID,
			"module_title":      module.Title,
			"module_order":      module.OrderNumber,
			"view_time_seconds": row.ViewTimeSeconds,
			"quiz_score":        row.QuizScore,
			"quiz_completed":    row.QuizCompleted,
			"completed_at":      row.CompletedAt,
		})
	}

	result := fiber.Map{
		"member": fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"full_name":  user.FullName,
			"role":       user.Role,
			"status":     user.Status,
			"invited_at": user.CreatedAt,
			"joined_at":  user.JoinedAt,
		},
		"progress": progress,
	}

	var certificate models.Certificate
	if err := adm.DB.Where("user_id = ?", id).First(&certificate).Error; err == nil {
		result["certificate"] = fiber.Map{
			"verification_code": certificate.VerificationCode,
			"average_score":     certificate.AverageScore,
			"issued_at":         certificate.IssuedAt,
		}
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// UpdateMemberStatus godoc
// @Summary Activate or deactivate a participant
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/members/{id}/status [patch]
func (adm *AdminController) UpdateMemberStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Status != models.StatusActive && input.Status != models.StatusInactive {
		return utils.BadRequest(c, "Invalid status")
	}

	if err := adm.Invites.SetStatus(id, input.Status); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return utils.NotFound(c, err.Error())
		}
		return utils.InternalServerError(c, "Could not update status")
	}

	return c.JSON(fiber.Map{"success": true})
}

// SendPasswordReset godoc
// @Summary Send a password reset email to a participant
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/members/{id}/password-reset [post]
func (adm *AdminController) SendPasswordReset(c *fiber.Ctx) error {
	id := c.Params("id")

	email, err := adm.Resets.RequestResetByID(id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return utils.NotFound(c, err.Error())
		case errors.Is(err, services.ErrNotActive):
			return utils.BadRequest(c, err.Error())
		default:
			return utils.InternalServerError(c, "Could not send the reset email")
		}
	}

	return c.JSON(fiber.Map{"success": true, "message": "Password reset email sent to " + email})
}

// DeleteMember godoc
// @Summary Delete a participant
// @Description Removes the account and cascades to progress and certificate
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/members/{id} [delete]
func (adm *AdminController) DeleteMember(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	id := c.Params("id")

	if err := adm.Invites.Delete(id, claims.UserID); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return utils.NotFound(c, err.Error())
		case errors.Is(err, services.ErrCannotDeleteSelf), errors.Is(err, services.ErrCannotDeleteAdmin):
			return utils.BadRequest(c, err.Error())
		default:
			return utils.InternalServerError(c, "Could not delete user")
		}
	}

	return c.JSON(fiber.Map{"success": true})
}
