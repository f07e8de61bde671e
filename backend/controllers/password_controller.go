package controllers

import (
	"academy/backend/config"
	"academy/backend/services"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type PasswordController struct {
	Cfg    *config.Config
	Resets *services.PasswordResetService
}

func NewPasswordController(cfg *config.Config, resets *services.PasswordResetService) *PasswordController {
	return &PasswordController{Cfg: cfg, Resets: resets}
}

// ForgotPassword godoc
// @Summary Request a password reset
// @Description Emails a reset link; the response is the same whether the address has an account or not
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Router /auth/forgot-password [post]
func (pc *PasswordController) ForgotPassword(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Email == "" {
		return utils.BadRequest(c, "Email is required")
	}

	if err := pc.Resets.RequestReset(input.Email); err != nil {
		return utils.InternalServerError(c, "Could not send the reset email")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "If an account exists for that address, a reset link is on its way",
	})
}

// ResetPassword godoc
// @Summary Redeem a password reset token
// @Description Sets a new password and logs the account in
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 410 {object} utils.ErrorResponse
// @Router /auth/reset-password [post]
func (pc *PasswordController) ResetPassword(c *fiber.Ctx) error {
	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Token == "" || input.Password == "" {
		return utils.BadRequest(c, "Token and password are required")
	}
	if len(input.Password) < utils.MinPasswordLength {
		return utils.BadRequest(c, "Password must be at least 6 characters")
	}

	user, err := pc.Resets.ResetPassword(input.Token, input.Password)
	if err != nil {
		return inviteTokenError(c, err)
	}

	// The reset link authenticated the user, so start a session like
	// invite redemption does.
	token, err := utils.GenerateJWTToken(user, pc.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}
	utils.SetAuthCookie(c, token, pc.Cfg)

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":        user.ID,
			"email":     user.Email,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})
}
