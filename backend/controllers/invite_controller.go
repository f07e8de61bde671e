package controllers

import (
	"errors"

	"academy/backend/config"
	"academy/backend/middleware"
	"academy/backend/services"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type InviteController struct {
	Cfg     *config.Config
	Invites *services.InviteService
}

func NewInviteController(cfg *config.Config, invites *services.InviteService) *InviteController {
	return &InviteController{Cfg: cfg, Invites: invites}
}

// CreateInvite godoc
// @Summary Invite a participant
// @Description Creates an invited account and emails a redemption link
// @Tags invites
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /invites [post]
func (ic *InviteController) CreateInvite(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	var input struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Email == "" {
		return utils.BadRequest(c, "Email is required")
	}

	user, reactivated, err := ic.Invites.Invite(input.Email, input.FullName, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEmail):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrAlreadyRegistered), errors.Is(err, services.ErrInviteActive):
			return utils.BadRequest(c, err.Error())
		default:
			return utils.InternalServerError(c, "Could not send the invitation")
		}
	}

	message := "Invitation sent to " + user.Email
	if reactivated {
		message = "Participant has been reactivated"
	}
	return c.JSON(fiber.Map{"success": true, "message": message})
}

// ValidateInvite godoc
// @Summary Validate an invite token
// @Description Resolves a raw invite token to the invited email
// @Tags invites
// @Produce json
// @Param token query string true "Raw invite token"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 410 {object} utils.ErrorResponse
// @Router /invites/validate [get]
func (ic *InviteController) ValidateInvite(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return utils.BadRequest(c, "Token is required")
	}

	email, err := ic.Invites.ValidateToken(token)
	if err != nil {
		return inviteTokenError(c, err)
	}

	return c.JSON(fiber.Map{"valid": true, "email": email})
}

// RedeemInvite godoc
// @Summary Redeem an invite token
// @Description Sets the password and activates the invited account
// @Tags invites
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 410 {object} utils.ErrorResponse
// @Router /invites/redeem [post]
func (ic *InviteController) RedeemInvite(c *fiber.Ctx) error {
	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Token == "" || input.Password == "" || input.FullName == "" {
		return utils.BadRequest(c, "All fields are required")
	}
	if len(input.Password) < utils.MinPasswordLength {
		return utils.BadRequest(c, "Password must be at least 6 characters")
	}

	user, err := ic.Invites.Redeem(input.Token, input.Password, input.FullName)
	if err != nil {
		return inviteTokenError(c, err)
	}

	// Log the new account in right away.
	token, err := utils.GenerateJWTToken(user, ic.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}
	utils.SetAuthCookie(c, token, ic.Cfg)

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

func inviteTokenError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrTokenInvalid):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTokenNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTokenExpired):
		return utils.Gone(c, err.Error())
	default:
		return utils.InternalServerError(c, "Could not validate the invitation")
	}
}
