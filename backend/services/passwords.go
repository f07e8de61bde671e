package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"academy/backend/config"
	"academy/backend/models"
	"academy/backend/utils"

	"gorm.io/gorm"
)

// ErrNotActive is returned when a reset is requested for an account that
// has not been activated yet; such accounts should be re-invited instead.
var ErrNotActive = errors.New("this account is not active")

// PasswordResetService issues and redeems password reset tokens. The
// token mechanics mirror invitations: random raw token mailed once,
// sha256 digest at rest, hard expiry, cleared on use.
type PasswordResetService struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Email  EmailSender
	Logger *log.Logger
}

func NewPasswordResetService(db *gorm.DB, cfg *config.Config, email EmailSender, logger *log.Logger) *PasswordResetService {
	return &PasswordResetService{DB: db, Cfg: cfg, Email: email, Logger: logger}
}

// RequestReset starts the self-service forgot-password flow. It succeeds
// silently for unknown or non-active addresses so responses reveal
// nothing about which emails have accounts.
func (svc *PasswordResetService) RequestReset(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailFormat.MatchString(email) {
		return nil
	}

	var user models.User
	err := svc.DB.Where("email = ? AND status = ?", email, models.StatusActive).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	return svc.issueReset(&user)
}

// RequestResetByID is the admin-triggered variant: unlike RequestReset it
// reports whether the account exists, since the caller is an admin
// looking at the member list anyway. Returns the address the mail went to.
func (svc *PasswordResetService) RequestResetByID(userID string) (string, error) {
	var user models.User
	if err := svc.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if !user.IsActive() {
		return "", ErrNotActive
	}

	if err := svc.issueReset(&user); err != nil {
		return "", err
	}
	return user.Email, nil
}

func (svc *PasswordResetService) issueReset(user *models.User) error {
	rawToken, err := utils.GenerateInviteToken()
	if err != nil {
		return err
	}

	tokenHash := utils.HashToken(rawToken)
	expiresAt := time.Now().UTC().Add(time.Duration(svc.Cfg.ResetExpiryMinutes) * time.Minute)
	updates := map[string]interface{}{
		"reset_token_hash": tokenHash,
		"reset_expires_at": expiresAt,
	}
	if err := svc.DB.Model(user).Updates(updates).Error; err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", svc.Cfg.SiteURL, rawToken)
	if err := svc.sendResetEmail(user.Email, user.FullName, resetURL); err != nil {
		// A token nobody received must not stay redeemable.
		if clrErr := svc.clearReset(user.ID); clrErr != nil {
			svc.Logger.Printf("reset rollback failed for %s: %v", user.Email, clrErr)
		}
		svc.Logger.Printf("reset email to %s failed: %v", user.Email, err)
		return ErrEmailSend
	}
	return nil
}

// ResetPassword redeems a reset token. Clearing the hash in the same
// update makes every token single-use.
func (svc *PasswordResetService) ResetPassword(rawToken, password string) (*models.User, error) {
	if !utils.IsValidTokenFormat(rawToken) {
		return nil, ErrTokenInvalid
	}

	var user models.User
	err := svc.DB.Where("reset_token_hash = ?", utils.HashToken(rawToken)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	if user.ResetExpiresAt == nil || user.ResetExpiresAt.Before(time.Now().UTC()) {
		return nil, ErrTokenExpired
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"password_hash":    passwordHash,
		"reset_token_hash": nil,
		"reset_expires_at": nil,
	}
	if err := svc.DB.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}

	user.PasswordHash = passwordHash
	user.ResetTokenHash = nil
	user.ResetExpiresAt = nil
	return &user, nil
}

func (svc *PasswordResetService) clearReset(userID string) error {
	return svc.DB.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"reset_token_hash": nil, "reset_expires_at": nil}).Error
}

func (svc *PasswordResetService) sendResetEmail(to, fullName, resetURL string) error {
	greeting := "Hi"
	if fullName != "" {
		greeting = "Hi " + fullName
	}

	subject := "Reset your AI Academy password"
	text := fmt.Sprintf(
		"%s,\n\nSomeone requested a password reset for this address.\n"+
			"Use the link below to choose a new password. The link is valid for %d minutes.\n"+
			"If this was not you, you can ignore this email.\n\n%s\n",
		greeting, svc.Cfg.ResetExpiryMinutes, resetURL)
	html := fmt.Sprintf(
		`<p>%s,</p><p>Someone requested a password reset for this address.</p>`+
			`<p><a href="%s">Choose a new password</a></p>`+
			`<p>This link is valid for %d minutes. If this was not you, you can ignore this email.<br>%s</p>`,
		greeting, resetURL, svc.Cfg.ResetExpiryMinutes, resetURL)

	return svc.Email.Send(to, subject, html, text)
}
