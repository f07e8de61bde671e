package services

import (
	"testing"
	"time"

	"academy/backend/models"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func sixModules() []models.Module {
	modules := make([]models.Module, 6)
	for i := range modules {
		modules[i] = models.Module{ID: uint(i + 1), OrderNumber: i + 1}
	}
	return modules
}

func passedProgress(moduleID uint, score int) models.UserProgress {
	now := time.Now().UTC()
	return models.UserProgress{
		ModuleID:      moduleID,
		QuizScore:     intPtr(score),
		QuizCompleted: score >= PassingScore,
		CompletedAt:   &now,
	}
}

func TestUnlockStatesFirstModuleAlwaysUnlocked(t *testing.T) {
	modules := sixModules()

	unlocked := UnlockStates(modules, map[uint]models.UserProgress{})
	assert.True(t, unlocked[0])
	for i := 1; i < len(unlocked); i++ {
		assert.False(t, unlocked[i], "module %d should be locked without progress", i)
	}
}

func TestUnlockStatesLinearChain(t *testing.T) {
	modules := sixModules()
	byModule := map[uint]models.UserProgress{
		1: passedProgress(1, 80),
		2: passedProgress(2, 75),
	}

	unlocked := UnlockStates(modules, byModule)
	assert.Equal(t, []bool{true, true, true, false, false, false}, unlocked)
}

func TestUnlockStatesFailedQuizDoesNotUnlock(t *testing.T) {
	modules := sixModules()
	byModule := map[uint]models.UserProgress{
		1: {ModuleID: 1, QuizScore: intPtr(65), QuizCompleted: false},
	}

	unlocked := UnlockStates(modules, byModule)
	assert.True(t, unlocked[0])
	assert.False(t, unlocked[1])
}

func TestModuleStatus(t *testing.T) {
	assert.Equal(t, models.ModuleNotStarted, ModuleStatus(nil))

	viewedOnly := &models.UserProgress{ViewTimeSeconds: 30}
	assert.Equal(t, models.ModuleInProgress, ModuleStatus(viewedOnly))

	failed := &models.UserProgress{QuizScore: intPtr(50)}
	assert.Equal(t, models.ModuleInProgress, ModuleStatus(failed))

	passed := passedProgress(1, 90)
	assert.Equal(t, models.ModuleCompleted, ModuleStatus(&passed))
}

func TestModulePassed(t *testing.T) {
	assert.False(t, ModulePassed(nil))

	barely := passedProgress(1, 70)
	assert.True(t, ModulePassed(&barely))

	below := models.UserProgress{ModuleID: 1, QuizScore: intPtr(69), QuizCompleted: false}
	assert.False(t, ModulePassed(&below))
}
