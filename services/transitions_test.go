package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"teravolta-backend/models"
)

func TestAppointmentTransitions(t *testing.T) {
	t.Run("from scheduled only on_route or cancelled", func(t *testing.T) {
		assert.True(t, CanTransition(AppointmentTransitions,
			models.AppointmentStatusScheduled, models.AppointmentStatusOnRoute))
		assert.True(t, CanTransition(AppointmentTransitions,
			models.AppointmentStatusScheduled, models.AppointmentStatusCancelled))
		assert.False(t, CanTransition(AppointmentTransitions,
			models.AppointmentStatusScheduled, models.AppointmentStatusInProgress))
		assert.False(t, CanTransition(AppointmentTransitions,
			models.AppointmentStatusScheduled, models.AppointmentStatusCompleted))
	})

	t.Run("from in_progress only completed", func(t *testing.T) {
		assert.True(t, CanTransition(AppointmentTransitions,
			models.AppointmentStatusInProgress, models.AppointmentStatusCompleted))
		assert.False(t, CanTransition(AppointmentTransitions,
			models.AppointmentStatusInProgress, models.AppointmentStatusScheduled))
		assert.False(t, CanTransition(AppointmentTransitions,
			models.AppointmentStatusInProgress, models.AppointmentStatusCancelled))
	})

	t.Run("terminal states have no exits", func(t *testing.T) {
		for _, next := range []string{
			models.AppointmentStatusScheduled,
			models.AppointmentStatusOnRoute,
			models.AppointmentStatusInProgress,
		} {
			assert.False(t, CanTransition(AppointmentTransitions,
				models.AppointmentStatusCompleted, next))
			assert.False(t, CanTransition(AppointmentTransitions,
				models.AppointmentStatusCancelled, next))
		}
	})
}

func TestProjectTransitionsAreLinearForCustomers(t *testing.T) {
	steps := []string{
		models.ProjectStatusPendingPayment,
		models.ProjectStatusPendingDocuments,
		models.ProjectStatusPendingScheduling,
		models.ProjectStatusActive,
	}
	for i := 0; i < len(steps)-1; i++ {
		assert.True(t, CanTransition(ProjectTransitions, steps[i], steps[i+1]),
			"%s -> %s should be legal", steps[i], steps[i+1])
	}

	// no skipping and no backward edges
	assert.False(t, CanTransition(ProjectTransitions,
		models.ProjectStatusPendingPayment, models.ProjectStatusPendingScheduling))
	assert.False(t, CanTransition(ProjectTransitions,
		models.ProjectStatusPendingPayment, models.ProjectStatusActive))
	assert.False(t, CanTransition(ProjectTransitions,
		models.ProjectStatusPendingDocuments, models.ProjectStatusPendingPayment))
}

func TestQuoteTransitions(t *testing.T) {
	assert.True(t, CanTransition(QuoteTransitions,
		models.QuoteStatusPendingReview, models.QuoteStatusReviewed))
	assert.True(t, CanTransition(QuoteTransitions,
		models.QuoteStatusApproved, models.QuoteStatusConverted))
	assert.False(t, CanTransition(QuoteTransitions,
		models.QuoteStatusPendingReview, models.QuoteStatusConverted))
	assert.False(t, CanTransition(QuoteTransitions,
		models.QuoteStatusRejected, models.QuoteStatusReviewed))
	assert.False(t, CanTransition(QuoteTransitions, "bogus", models.QuoteStatusReviewed))
}
