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

type CertificateController struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Certificates *services.CertificateService
}

func NewCertificateController(db *gorm.DB, cfg *config.Config, certificates *services.CertificateService) *CertificateController {
	return &CertificateController{DB: db, Cfg: cfg, Certificates: certificates}
}

// GetCertificate godoc
// @Summary Fetch or issue the course certificate
// @Description Issues the certificate once all modules are passed; afterwards always returns the same record
// @Tags certificate
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /certificate [get]
func (cc *CertificateController) GetCertificate(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	var modules []models.Module
	if err := cc.DB.Order("order_number").Find(&modules).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	certificate, eligibility, err := cc.Certificates.IssueOrFetch(claims.UserID, modules)
	if err != nil {
		if errors.Is(err, services.ErrNotEligible) {
			return c.JSON(fiber.Map{
				"success":           true,
				"eligible":          false,
				"completed_modules": eligibility.CompletedModules,
				"total_modules":     eligibility.TotalModules,
			})
		}
		return utils.InternalServerError(c, "Could not issue certificate")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"eligible": true,
		"certificate": fiber.Map{
			"verification_code": certificate.VerificationCode,
			"average_score":     certificate.AverageScore,
			"issued_at":         certificate.IssuedAt,
			"full_name":         claims.FullName,
		},
	})
}
