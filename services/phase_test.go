package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"teravolta-backend/models"
)

func TestPhasesBalanced(t *testing.T) {
	phases := func(amounts ...float64) []models.Phase {
		out := make([]models.Phase, len(amounts))
		for i, a := range amounts {
			out[i] = models.Phase{Amount: a}
		}
		return out
	}

	t.Run("exact sum", func(t *testing.T) {
		assert.True(t, PhasesBalanced(phases(400, 600), 1000))
	})

	t.Run("within epsilon", func(t *testing.T) {
		assert.True(t, PhasesBalanced(phases(333.33, 333.33, 333.34), 1000))
		assert.True(t, PhasesBalanced(phases(499.995, 500.0), 1000))
	})

	t.Run("off by more than epsilon", func(t *testing.T) {
		assert.False(t, PhasesBalanced(phases(400, 500), 1000))
		assert.False(t, PhasesBalanced(phases(400, 600.02), 1000))
	})

	t.Run("no phases only balance a zero amount", func(t *testing.T) {
		assert.True(t, PhasesBalanced(nil, 0))
		assert.False(t, PhasesBalanced(nil, 1000))
	})
}

func TestAllPhasesPaid(t *testing.T) {
	assert.True(t, AllPhasesPaid(nil))
	assert.True(t, AllPhasesPaid([]models.Phase{
		{Status: models.PhaseStatusPaid},
		{Status: models.PhaseStatusPaid},
	}))
	assert.False(t, AllPhasesPaid([]models.Phase{
		{Status: models.PhaseStatusPaid},
		{Status: models.PhaseStatusPending},
	}))
}

func TestRequiresPhases(t *testing.T) {
	assert.True(t, RequiresPhases("consulting", 1000))
	assert.True(t, RequiresPhases("advocacy", 1))
	assert.False(t, RequiresPhases("consulting", 0))
	assert.False(t, RequiresPhases("solar", 1000))
}
