package controllers_test

import (
	"testing"

	"academy/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificateNotEligible(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "secret123", models.RoleParticipant)
	modules := env.seedModules(t, 3)

	env.submitQuiz(t, user, modules[0].ID, 90)

	req := jsonRequest("GET", "/api/certificate", nil)
	req.Header.Set("Authorization", env.authToken(t, user))
	resp, body := env.do(t, req)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["eligible"])
	assert.Equal(t, float64(1), body["completed_modules"])
	assert.Equal(t, float64(3), body["total_modules"])
	assert.Nil(t, body["certificate"])
}

func TestCertificateIssuedWhenAllModulesPassed(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "secret123", models.RoleParticipant)
	modules := env.seedModules(t, 2)

	env.submitQuiz(t, user, modules[0].ID, 80)
	env.submitQuiz(t, user, modules[1].ID, 90)

	req := jsonRequest("GET", "/api/certificate", nil)
	req.Header.Set("Authorization", env.authToken(t, user))
	resp, body := env.do(t, req)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["eligible"])

	certificate := body["certificate"].(map[string]interface{})
	assert.Equal(t, float64(85), certificate["average_score"])
	assert.NotEmpty(t, certificate["verification_code"])
	assert.Equal(t, "Test User", certificate["full_name"])

	// a second fetch returns the same code
	req = jsonRequest("GET", "/api/certificate", nil)
	req.Header.Set("Authorization", env.authToken(t, user))
	_, again := env.do(t, req)
	assert.Equal(t, certificate["verification_code"],
		again["certificate"].(map[string]interface{})["verification_code"])
}
