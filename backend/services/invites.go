package services

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"academy/backend/config"
	"academy/backend/models"
	"academy/backend/utils"

	"gorm.io/gorm"
)

var (
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrAlreadyRegistered = errors.New("this user is already a participant")
	ErrInviteActive      = errors.New("an invitation for this email is already active")
	ErrEmailSend         = errors.New("could not send the invitation email")

	// Token errors deliberately collapse "malformed" and "unknown" into
	// fixed messages so responses cannot be used as a guessing oracle.
	ErrTokenInvalid  = errors.New("invalid token")
	ErrTokenNotFound = errors.New("invitation not found or already used")
	ErrTokenExpired  = errors.New("this invitation has expired")

	ErrUserNotFound    = errors.New("user not found")
	ErrCannotDeleteSelf  = errors.New("you cannot delete your own account")
	ErrCannotDeleteAdmin = errors.New("admin accounts cannot be deleted")
)

var emailFormat = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// InviteService runs the invitation lifecycle: token issuance, email
// dispatch with rollback, one-time redemption and account status
// management.
type InviteService struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Email  EmailSender
	Logger *log.Logger
}

func NewInviteService(db *gorm.DB, cfg *config.Config, email EmailSender, logger *log.Logger) *InviteService {
	return &InviteService{DB: db, Cfg: cfg, Email: email, Logger: logger}
}

// Invite creates an invited account for email and mails a redemption
// link carrying the raw token. The returned flag is true when an
// inactive account was reactivated instead (no token issued).
//
// The email is sent only after the provisional row exists; if the send
// fails the row is deleted again, so from the caller's perspective the
// operation is atomic: either a usable invite exists and a mail went
// out, or neither.
func (svc *InviteService) Invite(email, fullName, invitedByID string) (*models.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailFormat.MatchString(email) {
		return nil, false, ErrInvalidEmail
	}

	var existing models.User
	err := svc.DB.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		switch existing.Status {
		case models.StatusActive:
			return nil, false, ErrAlreadyRegistered
		case models.StatusInactive:
			// Returning participant: flip back to active, keep progress.
			if err := svc.DB.Model(&existing).Update("status", models.StatusActive).Error; err != nil {
				return nil, false, err
			}
			existing.Status = models.StatusActive
			return &existing, true, nil
		default: // invited or pending
			if !existing.InviteExpired(time.Now().UTC()) {
				return nil, false, ErrInviteActive
			}
			// Stale invite: expiry is the only re-invitation mechanism.
			if err := svc.DB.Delete(&existing).Error; err != nil {
				return nil, false, err
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fresh invite
	default:
		return nil, false, err
	}

	rawToken, err := utils.GenerateInviteToken()
	if err != nil {
		return nil, false, err
	}

	tokenHash := utils.HashToken(rawToken)
	expiresAt := utils.TokenExpiry(svc.Cfg.InviteExpiryHours)
	user := models.User{
		Email:           email,
		FullName:        fullName,
		Role:            models.RoleParticipant,
		Status:          models.StatusInvited,
		InviteTokenHash: &tokenHash,
		TokenExpiresAt:  &expiresAt,
		InvitedBy:       &invitedByID,
	}
	if err := svc.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, ErrInviteActive
		}
		return nil, false, err
	}

	inviteURL := fmt.Sprintf("%s/register/invite?token=%s", svc.Cfg.SiteURL, rawToken)
	if err := svc.sendInviteEmail(email, fullName, inviteURL); err != nil {
		// Compensate: the invite must not survive a failed send.
		if delErr := svc.DB.Delete(&user).Error; delErr != nil {
			svc.Logger.Printf("invite rollback failed for %s: %v", email, delErr)
		}
		svc.Logger.Printf("invite email to %s failed: %v", email, err)
		return nil, false, ErrEmailSend
	}

	return &user, false, nil
}

// ValidateToken resolves a raw invite token to the email it was issued
// for. It never returns token material or any other account data.
func (svc *InviteService) ValidateToken(rawToken string) (string, error) {
	user, err := svc.lookupInvite(rawToken)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

// Redeem turns an invited account into an active one. Clearing the
// token hash in the same update guarantees a token redeems at most
// once: a second attempt no longer matches any row.
func (svc *InviteService) Redeem(rawToken, password, fullName string) (*models.User, error) {
	user, err := svc.lookupInvite(rawToken)
	if err != nil {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"password_hash":     passwordHash,
		"full_name":         fullName,
		"status":            models.StatusActive,
		"joined_at":         now,
		"invite_token_hash": nil,
		"token_expires_at":  nil,
	}
	if err := svc.DB.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}

	user.PasswordHash = passwordHash
	user.FullName = fullName
	user.Status = models.StatusActive
	user.JoinedAt = &now
	user.InviteTokenHash = nil
	user.TokenExpiresAt = nil
	return user, nil
}

func (svc *InviteService) lookupInvite(rawToken string) (*models.User, error) {
	// Structural check first: malformed input never reaches the database.
	if !utils.IsValidTokenFormat(rawToken) {
		return nil, ErrTokenInvalid
	}

	var user models.User
	err := svc.DB.
		Where("invite_token_hash = ? AND status IN ?", utils.HashToken(rawToken),
			[]string{models.StatusInvited, models.StatusPending}).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	if user.InviteExpired(time.Now().UTC()) {
		return nil, ErrTokenExpired
	}
	return &user, nil
}

// SetStatus toggles an account between active and inactive. Progress
// data is left untouched.
func (svc *InviteService) SetStatus(userID, status string) error {
	res := svc.DB.Model(&models.User{}).Where("id = ?", userID).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a participant account. Self-deletion and admin targets
// are forbidden; progress records and certificates go with the account.
func (svc *InviteService) Delete(userID, callerID string) error {
	if userID == callerID {
		return ErrCannotDeleteSelf
	}

	var user models.User
	if err := svc.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsAdmin() {
		return ErrCannotDeleteAdmin
	}

	return svc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Certificate{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

func (svc *InviteService) sendInviteEmail(to, fullName, inviteURL string) error {
	greeting := "Hi"
	if fullName != "" {
		greeting = "Hi " + fullName
	}

	subject := "You are invited to the AI Academy course"
	text := fmt.Sprintf(
		"%s,\n\nYou have been invited to join the AI Academy course.\n"+
			"Create your account via the link below. The link is valid for %d hours.\n\n%s\n",
		greeting, svc.Cfg.InviteExpiryHours, inviteURL)
	html := fmt.Sprintf(
		`<p>%s,</p><p>You have been invited to join the AI Academy course.</p>`+
			`<p><a href="%s">Create your account</a></p>`+
			`<p>This link is valid for %d hours. If the button does not work, copy this URL:<br>%s</p>`,
		greeting, inviteURL, svc.Cfg.InviteExpiryHours, inviteURL)

	return svc.Email.Send(to, subject, html, text)
}
