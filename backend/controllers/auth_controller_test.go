package controllers_test

import (
	"testing"

	"academy/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com", "secret123", models.RoleParticipant)

	resp, body := env.do(t, jsonRequest("POST", "/api/auth/login", fiber.Map{
		"email":    "alice@example.com",
		"password": "secret123",
	}))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, models.RoleParticipant, user["role"])

	cookie := authCookie(resp)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestLoginNormalizesEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com", "secret123", models.RoleParticipant)

	resp, _ := env.do(t, jsonRequest("POST", "/api/auth/login", fiber.Map{
		"email":    "  Alice@Example.COM ",
		"password": "secret123",
	}))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com", "secret123", models.RoleParticipant)

	// wrong password and unknown email must be indistinguishable
	resp, body := env.do(t, jsonRequest("POST", "/api/auth/login", fiber.Map{
		"email":    "alice@example.com",
		"password": "wrong",
	}))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", body["message"])

	resp, body = env.do(t, jsonRequest("POST", "/api/auth/login", fiber.Map{
		"email":    "nobody@example.com",
		"password": "secret123",
	}))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", body["message"])
}

func TestLoginRejectsInvitedAccount(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "invited@example.com", "secret123", models.RoleParticipant)
	env.DB.Model(&user).Update("status", models.StatusInvited)

	resp, _ := env.do(t, jsonRequest("POST", "/api/auth/login", fiber.Map{
		"email":    "invited@example.com",
		"password": "secret123",
	}))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRequiresFields(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, jsonRequest("POST", "/api/auth/login", fiber.Map{"email": "a@b.co"}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRegisterCreatesActiveAccount(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, jsonRequest("POST", "/api/auth/register", fiber.Map{
		"email":     "bob@example.com",
		"password":  "secret123",
		"full_name": "Bob",
	}))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	require.NotNil(t, authCookie(resp))

	var user models.User
	require.NoError(t, env.DB.Where("email = ?", "bob@example.com").First(&user).Error)
	assert.Equal(t, models.StatusActive, user.Status)
	assert.Equal(t, models.RoleParticipant, user.Role)

	// same email again
	resp, _ = env.do(t, jsonRequest("POST", "/api/auth/register", fiber.Map{
		"email":     "bob@example.com",
		"password":  "secret123",
		"full_name": "Bob",
	}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, jsonRequest("POST", "/api/auth/register", fiber.Map{
		"email":     "bob@example.com",
		"password":  "short",
		"full_name": "Bob",
	}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProfileRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, jsonRequest("GET", "/api/auth/profile", nil))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProfileReturnsAccount(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "secret123", models.RoleParticipant)

	req := jsonRequest("GET", "/api/auth/profile", nil)
	req.Header.Set("Authorization", env.authToken(t, user))
	resp, body := env.do(t, req)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	profile := data(t, body)
	assert.Equal(t, "alice@example.com", profile["email"])
	assert.Equal(t, models.StatusActive, profile["status"])
}

func TestUpdateProfileChangesName(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "secret123", models.RoleParticipant)

	req := jsonRequest("PUT", "/api/auth/profile", fiber.Map{"full_name": "Alice Renamed"})
	req.Header.Set("Authorization", env.authToken(t, user))
	resp, _ := env.do(t, req)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// cookie is re-issued so the claims carry the new name
	assert.NotNil(t, authCookie(resp))

	var updated models.User
	require.NoError(t, env.DB.First(&updated, "id = ?", user.ID).Error)
	assert.Equal(t, "Alice Renamed", updated.FullName)
}

func TestUpdateProfileRejectsEmptyBody(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "secret123", models.RoleParticipant)

	req := jsonRequest("PUT", "/api/auth/profile", fiber.Map{})
	req.Header.Set("Authorization", env.authToken(t, user))
	resp, _ := env.do(t, req)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
