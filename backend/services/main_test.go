package services

import (
	"log"
	"os"
	"testing"

	"academy/backend/config"
	"academy/backend/utils"

	"gorm.io/gorm"
)

// testDB connects to the test database and wipes the domain tables.
// Tests that need storage are skipped when no database is reachable.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := testConfig()
	db, err := utils.InitDB(cfg)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}

	db.Exec("DELETE FROM certificates")
	db.Exec("DELETE FROM user_progress")
	db.Exec("DELETE FROM questions")
	db.Exec("DELETE FROM modules")
	db.Exec("DELETE FROM users")

	return db
}

func testConfig() *config.Config {
	return &config.Config{
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
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[test] ", log.LstdFlags)
}
