package controllers

import (
	"errors"
	"strings"
	"time"

	"academy/backend/config"
	"academy/backend/middleware"
	"academy/backend/models"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

// Login godoc
// @Summary User login
// @Description Authenticates by email and password and sets the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Email == "" || input.Password == "" {
		return utils.BadRequest(c, "Email and password are required")
	}

	var user models.User
	err := ac.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid email or password")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if !user.IsActive() {
		return utils.Unauthorized(c, "Your account is not activated yet")
	}

	if !utils.CheckPassword(input.Password, user.PasswordHash) {
		return utils.Unauthorized(c, "Invalid email or password")
	}

	token, err := utils.GenerateJWTToken(&user, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}
	utils.SetAuthCookie(c, token, ac.Cfg)

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user": fiber.Map{
			"id":        user.ID,
			"email":     user.Email,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})
}

// Register godoc
// @Summary Self registration
// @Description Creates an active participant account and logs it in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Registration data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	type RegisterInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}

	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Email == "" || input.Password == "" || input.FullName == "" {
		return utils.BadRequest(c, "All fields are required")
	}
	if len(input.Password) < utils.MinPasswordLength {
		return utils.BadRequest(c, "Password must be at least 6 characters")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	passwordHash, err := utils.HashPassword(input.Password)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     input.FullName,
		Role:         models.RoleParticipant,
		Status:       models.StatusActive,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.BadRequest(c, "This email is already registered")
		}
		return utils.InternalServerError(c, "Could not create account")
	}

	token, err := utils.GenerateJWTToken(&user, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}
	utils.SetAuthCookie(c, token, ac.Cfg)

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user": fiber.Map{
			"id":        user.ID,
			"email":     user.Email,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	utils.ClearAuthCookie(c, ac.Cfg)
	return c.JSON(fiber.Map{"success": true})
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user's profile
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /auth/profile [get]
func (ac *AuthController) GetProfile(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	var user models.User
	if err := ac.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":         user.ID,
		"email":      user.Email,
		"full_name":  user.FullName,
		"role":       user.Role,
		"status":     user.Status,
		"joined_at":  user.JoinedAt,
		"created_at": user.CreatedAt,
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates full name and/or password of the authenticated user
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /auth/profile [put]
func (ac *AuthController) UpdateProfile(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	var input struct {
		FullName    *string `json:"full_name"`
		NewPassword string  `json:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := ac.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	updates := map[string]interface{}{}
	if input.FullName != nil {
		updates["full_name"] = *input.FullName
	}
	if input.NewPassword != "" {
		if len(input.NewPassword) < utils.MinPasswordLength {
			return utils.BadRequest(c, "Password must be at least 6 characters")
		}
		passwordHash, err := utils.HashPassword(input.NewPassword)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		updates["password_hash"] = passwordHash
	}
	if len(updates) == 0 {
		return utils.BadRequest(c, "Nothing to update")
	}
	updates["updated_at"] = time.Now().UTC()

	if err := ac.DB.Model(&user).Updates(updates).Error; err != nil {
		return utils.InternalServerError(c, "Could not update profile")
	}

	// Name lives in the session claims, so re-issue the cookie when it changes.
	if input.FullName != nil {
		user.FullName = *input.FullName
		token, err := utils.GenerateJWTToken(&user, ac.Cfg)
		if err == nil {
			utils.SetAuthCookie(c, token, ac.Cfg)
		}
	}

	return c.JSON(fiber.Map{"success": true})
}
