package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"academy/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (env *testEnv) submitQuiz(t *testing.T, user models.User, moduleID uint, score int) map[string]interface{} {
	t.Helper()
	req := jsonRequest("POST", "/api/progress/quiz", fiber.Map{
		"module_id":  moduleID,
		"quiz_score": score,
	})
	req.Header.Set("Authorization", env.authToken(t, user))
	resp, body := env.do(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "body: %v", body)
	return body
}

func (env *testEnv) saveViewTime(t *testing.T, user models.User, moduleID uint, seconds int) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := jsonRequest("POST", "/api/progress/view", fiber.Map{
		"module_id":         moduleID,
		"view_time_seconds": seconds,
	})
	req.Header.Set("Authorization", env.authToken(t, user))
	return env.do(t, req)
}

func TestSaveViewTimeValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "secret123", models.RoleParticipant)
	modules := env.seedModules(t, 1)

	// zero seconds is a valid beacon value
	resp, _ := env.saveViewTime(t, user, modules[0].ID, 0)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = env.saveViewTime(t, user, modules[0].ID, -5)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// missing view_time_seconds
	req := jsonRequest("POST", "/api/progress/view", fiber.Map{"module_id": modules[0].ID})
	req.Header.Set("Authorization", env.authToken(t, user))
	resp, _ = env.do(t, req)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmitQuizReportsPassing(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "secret123", models.RoleParticipant)
	modules := env.seedModules(t, 1)

	body := env.submitQuiz(t, user, modules[0].ID, 65)
	assert.Equal(t, false, body["is_passing"])

	body = env.submitQuiz(t, user, modules[0].ID, 85)
	assert.Equal(t, true, body["is_passing"])
}

func TestDashboardUnlockChain(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "secret123", models.RoleParticipant)
	modules := env.seedModules(t, 3)

	env.submitQuiz(t, user, modules[0].ID, 90)

	req := jsonRequest("GET", "/api/progress", nil)
	req.Header.Set("Authorization", env.authToken(t, user))
	resp, body := env.do(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	dashboard := data(t, body)
	assert.Equal(t, float64(3), dashboard["total_modules"])
	assert.Equal(t, float64(1), dashboard["completed_modules"])

	list := dashboard["modules"].([]interface{})
	require.Len(t, list, 3)

	first := list[0].(map[string]interface{})
	assert.Equal(t, true, first["is_unlocked"])
	assert.Equal(t, models.ModuleCompleted, first["status"])

	second := list[1].(map[string]interface{})
	assert.Equal(t, true, second["is_unlocked"])
	assert.Equal(t, models.ModuleNotStarted, second["status"])

	third := list[2].(map[string]interface{})
	assert.Equal(t, false, third["is_unlocked"])
}

func TestGetModuleEnforcesLock(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "secret123", models.RoleParticipant)
	modules := env.seedModules(t, 2)

	req := jsonRequest("GET", fmt.Sprintf("/api/modules/%d", modules[1].ID), nil)
	req.Header.Set("Authorization", env.authToken(t, user))
	resp, body := env.do(t, req)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Module is locked", body["message"])

	env.submitQuiz(t, user, modules[0].ID, 80)

	req = jsonRequest("GET", fmt.Sprintf("/api/modules/%d", modules[1].ID), nil)
	req.Header.Set("Authorization", env.authToken(t, user))
	resp, _ = env.do(t, req)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGetModuleQuizGate(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "secret123", models.RoleParticipant)
	modules := env.seedModules(t, 1)
	question := models.Question{
		ModuleID:      modules[0].ID,
		QuestionText:  "What is supervised learning?",
		OptionA:       "A",
		OptionB:       "B",
		OptionC:       "C",
		OptionD:       "D",
		CorrectAnswer: "a",
		OrderNumber:   1,
	}
	require.NoError(t, env.DB.Create(&question).Error)

	req := jsonRequest("GET", fmt.Sprintf("/api/modules/%d", modules[0].ID), nil)
	req.Header.Set("Authorization", env.authToken(t, user))
	resp, body := env.do(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	detail := data(t, body)
	assert.Equal(t, false, detail["can_start_quiz"])
	assert.Equal(t, float64(120), detail["min_view_time"])
	require.Len(t, detail["questions"].([]interface{}), 1)

	// enough accumulated view time opens the quiz
	env.saveViewTime(t, user, modules[0].ID, 150)

	req = jsonRequest("GET", fmt.Sprintf("/api/modules/%d", modules[0].ID), nil)
	req.Header.Set("Authorization", env.authToken(t, user))
	_, body = env.do(t, req)
	detail = data(t, body)
	assert.Equal(t, true, detail["can_start_quiz"])
	assert.Equal(t, float64(150), detail["view_time_seconds"])
}

func TestGetModuleNotFound(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "secret123", models.RoleParticipant)

	req := jsonRequest("GET", "/api/modules/999", nil)
	req.Header.Set("Authorization", env.authToken(t, user))
	resp, _ := env.do(t, req)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
