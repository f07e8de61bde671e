package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"academy/backend/config"
	"academy/backend/models"
	"academy/backend/routes"
	"academy/backend/services"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv wires a full application against the test database. Every test
// gets its own app so rate-limit counters never leak between tests.
type testEnv struct {
	App    *fiber.App
	DB     *gorm.DB
	Cfg    *config.Config
	Mailer *services.ConsoleSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		AppEnv:             "test",
		DBHost:             envOr("TEST_DB_HOST", "localhost"),
		DBPort:             envOr("TEST_DB_PORT", "5432"),
		DBUser:             envOr("TEST_DB_USER", "postgres"),
		DBPassword:         envOr("TEST_DB_PASSWORD", "postgres"),
		DBName:             envOr("TEST_DB_NAME", "academy_test"),
		JWTSecret:          "testsecret",
		SiteURL:            "http://localhost:8080",
		InviteExpiryHours:  72,
		ResetExpiryMinutes: 60,
	}

	db, err := utils.InitDB(cfg)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	db.Exec("DELETE FROM certificates")
	db.Exec("DELETE FROM user_progress")
	db.Exec("DELETE FROM questions")
	db.Exec("DELETE FROM modules")
	db.Exec("DELETE FROM users")

	mailer := services.NewConsoleSender(nil)
	quiet := log.New(io.Discard, "", 0)
	invites := services.NewInviteService(db, cfg, mailer, quiet)
	resets := services.NewPasswordResetService(db, cfg, mailer, quiet)

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, invites, resets)

	return &testEnv{App: app, DB: db, Cfg: cfg, Mailer: mailer}
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func jsonRequest(method, path string, payload interface{}) *http.Request {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// do runs a request and decodes the JSON body.
func (env *testEnv) do(t *testing.T, req *http.Request) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := env.App.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	body := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	}
	return resp, body
}

func (env *testEnv) createUser(t *testing.T, email, password, role string) models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	user := models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test User",
		Role:         role,
		Status:       models.StatusActive,
	}
	require.NoError(t, env.DB.Create(&user).Error)
	return user
}

// authToken returns a session token passed via the Authorization header.
func (env *testEnv) authToken(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateJWTToken(&user, env.Cfg)
	require.NoError(t, err)
	return token
}

func (env *testEnv) seedModules(t *testing.T, count int) []models.Module {
	t.Helper()
	modules := make([]models.Module, count)
	for i := range modules {
		modules[i] = models.Module{
			OrderNumber: i + 1,
			Title:       fmt.Sprintf("Module %d", i+1),
			EmbedURL:    fmt.Sprintf("https://example.com/embed/%d", i+1),
		}
		require.NoError(t, env.DB.Create(&modules[i]).Error)
	}
	return modules
}

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	inner, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "expected data envelope, got %v", body)
	return inner
}

func authCookie(resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == utils.AuthCookieName {
			return cookie
		}
	}
	return nil
}
