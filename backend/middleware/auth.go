package middleware

import (
	"academy/backend/config"
	"academy/backend/models"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const ClaimsKey = "session_claims"

// AuthMiddleware verifies the session token and stores its claims in
// the request locals.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.ExtractSessionClaims(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// AdminMiddleware additionally requires an admin role bound to an
// active account. The role claim alone is not trusted: a deactivated
// admin still holds a signed token until it expires, so status is
// checked against the database.
func AdminMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.ExtractSessionClaims(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.Select("role", "status").First(&user, "id = ?", claims.UserID).Error; err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if !user.IsAdmin() || !user.IsActive() {
			return utils.Forbidden(c, "Admin access required")
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// Claims returns the session claims stored by AuthMiddleware.
func Claims(c *fiber.Ctx) *utils.SessionClaims {
	claims, _ := c.Locals(ClaimsKey).(*utils.SessionClaims)
	return claims
}
