package routes

import (
	"time"

	"academy/backend/config"
	"academy/backend/controllers"
	"academy/backend/middleware"
	"academy/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, invites *services.InviteService, resets *services.PasswordResetService) {
	progress := services.NewProgressService(db)
	certificates := services.NewCertificateService(db)

	// Middleware. Each limited route gets its own counter so one
	// endpoint cannot burn another's budget.
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)
	loginLimit := middleware.RateLimitMiddleware(middleware.NewMemoryLimiter(5, time.Minute))
	registerLimit := middleware.RateLimitMiddleware(middleware.NewMemoryLimiter(3, 5*time.Minute))
	redeemLimit := middleware.RateLimitMiddleware(middleware.NewMemoryLimiter(3, 5*time.Minute))
	forgotLimit := middleware.RateLimitMiddleware(middleware.NewMemoryLimiter(3, 5*time.Minute))

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/login", loginLimit, authController.Login)
	app.Post("/api/auth/register", registerLimit, authController.Register)
	app.Post("/api/auth/logout", authController.Logout)
	app.Get("/api/auth/profile", authMiddleware, authController.GetProfile)
	app.Put("/api/auth/profile", authMiddleware, authController.UpdateProfile)

	// Password reset
	passwordController := controllers.NewPasswordController(cfg, resets)
	app.Post("/api/auth/forgot-password", forgotLimit, passwordController.ForgotPassword)
	app.Post("/api/auth/reset-password", passwordController.ResetPassword)

	// Invitation routes
	inviteController := controllers.NewInviteController(cfg, invites)
	app.Post("/api/invites", adminMiddleware, inviteController.CreateInvite)
	app.Get("/api/invites/validate", inviteController.ValidateInvite)
	app.Post("/api/invites/redeem", redeemLimit, inviteController.RedeemInvite)

	// Module and progress routes
	modulesController := controllers.NewModulesController(db, cfg, progress)
	app.Get("/api/modules/:id", authMiddleware, modulesController.GetModule)

	progressController := controllers.NewProgressController(db, cfg, progress)
	app.Get("/api/progress", authMiddleware, progressController.GetDashboard)
	app.Post("/api/progress/view", authMiddleware, progressController.SaveViewTime)
	app.Post("/api/progress/quiz", authMiddleware, progressController.SubmitQuiz)

	// Certificate
	certificateController := controllers.NewCertificateController(db, cfg, certificates)
	app.Get("/api/certificate", authMiddleware, certificateController.GetCertificate)

	// Admin routes
	adminController := controllers.NewAdminController(db, cfg, invites, resets)
	admin := app.Group("/api/admin", adminMiddleware)
	admin.Get("/members", adminController.ListMembers)
	admin.Get("/members/:id", adminController.GetMember)
	admin.Patch("/members/:id/status", adminController.UpdateMemberStatus)
	admin.Post("/members/:id/password-reset", adminController.SendPasswordReset)
	admin.Delete("/members/:id", adminController.DeleteMember)
}
