package services

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"academy/backend/config"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSender dispatches a single message. Any returned error is treated
// as fatal for the calling operation; the invite workflow compensates by
// rolling back its provisional write.
type EmailSender interface {
	Send(to, subject, html, text string) error
}

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
	sendTimeout      = 15 * time.Second
)

type SendgridSender struct {
	key  string
	from *sgmail.Email
}

var _ EmailSender = (*SendgridSender)(nil)

func NewSendgridSender(cfg *config.Config) *SendgridSender {
	// Outbound sends must not hang the request forever.
	sendgrid.DefaultClient = &rest.Client{HTTPClient: &http.Client{Timeout: sendTimeout}}
	return &SendgridSender{
		key:  cfg.SendgridAPIKey,
		from: sgmail.NewEmail(cfg.FromName, cfg.FromEmail),
	}
}

func (s *SendgridSender) Send(to, subject, html, text string) error {
	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail("", to))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", text),
		sgmail.NewContent("text/html", html),
	)

	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sending email: status=%d body=%s", res.StatusCode, res.Body)
	}
	return nil
}

// SentEmail is a message captured by ConsoleSender.
type SentEmail struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// ConsoleSender logs messages instead of sending them and records them
// for inspection. Used in development and tests.
type ConsoleSender struct {
	Logger *log.Logger

	mu   sync.Mutex
	sent []SentEmail
}

var _ EmailSender = (*ConsoleSender)(nil)

func NewConsoleSender(logger *log.Logger) *ConsoleSender {
	return &ConsoleSender{Logger: logger}
}

func (s *ConsoleSender) Send(to, subject, html, text string) error {
	s.mu.Lock()
	s.sent = append(s.sent, SentEmail{To: to, Subject: subject, HTML: html, Text: text})
	s.mu.Unlock()

	if s.Logger != nil {
		s.Logger.Printf("email to=%s subject=%q\n%s", to, subject, text)
	}
	return nil
}

func (s *ConsoleSender) Sent() []SentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SentEmail, len(s.sent))
	copy(out, s.sent)
	return out
}
