package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"teravolta-backend/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Inquiry{},
		&models.InquiryAttachment{},
		&models.Quote{},
		&models.Phase{},
		&models.ActiveProject{},
		&models.TimelineEntry{},
		&models.ProjectDocument{},
		&models.Appointment{},
		&models.Technician{},
		&models.Leave{},
		&models.Notification{},
		&models.OutboxMessage{},
		&models.Service{},
	))
	return db
}

func createQuote(t *testing.T, db *gorm.DB, service string, amount float64, status string) *models.Quote {
	t.Helper()
	quote := models.Quote{
		ClientName:  "Ana Pérez",
		ClientEmail: "ana@example.com",
		ClientPhone: "+50761234567",
		Service:     service,
		Amount:      amount,
		Status:      status,
		Language:    "es",
	}
	require.NoError(t, db.Create(&quote).Error)
	return &quote
}

func outboxCount(t *testing.T, db *gorm.DB, kind string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.OutboxMessage{}).
		Where("kind = ? AND status = ?", kind, models.OutboxStatusPending).
		Count(&count).Error)
	return count
}

func TestReviewQuote(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLifecycleService(db)
	reviewer := uuid.New()

	quote := createQuote(t, db, "solar", 5000, models.QuoteStatusPendingReview)

	updated, err := svc.ReviewQuote(quote.ID, reviewer)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusReviewed, updated.Status)
	require.NotNil(t, updated.ReviewedBy)
	assert.Equal(t, reviewer, *updated.ReviewedBy)
	assert.NotNil(t, updated.ReviewedAt)

	// informational email is queued even for anonymous leads
	assert.EqualValues(t, 1, outboxCount(t, db, models.OutboxKindEmail))

	// reviewing twice is illegal
	_, err = svc.ReviewQuote(quote.ID, reviewer)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReviewQuoteNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLifecycleService(db)

	_, err := svc.ReviewQuote(uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrQuoteNotFound)
}

func TestRejectQuote(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLifecycleService(db)

	t.Run("requires a reason", func(t *testing.T) {
		quote := createQuote(t, db, "solar", 5000, models.QuoteStatusPendingReview)
		_, err := svc.RejectQuote(quote.ID, uuid.New(), "")
		assert.ErrorIs(t, err, ErrMissingReason)
	})

	t.Run("rejects with localized email queued", func(t *testing.T) {
		quote := createQuote(t, db, "solar", 5000, models.QuoteStatusPendingReview)
		before := outboxCount(t, db, models.OutboxKindEmail)

		updated, err := svc.RejectQuote(quote.ID, uuid.New(), "fuera de cobertura")
		require.NoError(t, err)
		assert.Equal(t, models.QuoteStatusRejected, updated.Status)
		assert.Equal(t, "fuera de cobertura", updated.RejectReason)
		assert.EqualValues(t, before+1, outboxCount(t, db, models.OutboxKindEmail))
	})

	t.Run("terminal quotes cannot be rejected", func(t *testing.T) {
		quote := createQuote(t, db, "solar", 5000, models.QuoteStatusConverted)
		_, err := svc.RejectQuote(quote.ID, uuid.New(), "tarde")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestConvertQuotePhaseGating(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := setupTestDB(t)
	svc := NewLifecycleService(db)

	t.Run("consulting without phases is blocked", func(t *testing.T) {
		quote := createQuote(t, db, "consulting", 1000, models.QuoteStatusApproved)
		_, err := svc.ConvertQuote(quote.ID, "admin")
		assert.ErrorIs(t, err, ErrPhasesRequired)
	})

	t.Run("consulting with unbalanced phases is blocked", func(t *testing.T) {
		quote := createQuote(t, db, "consulting", 1000, models.QuoteStatusApproved)
		require.NoError(t, db.Create(&models.Phase{
			QuoteID: quote.ID, Name: "Anticipo", Amount: 400,
			Status: models.PhaseStatusPending,
		}).Error)
		_, err := svc.ConvertQuote(quote.ID, "admin")
		assert.ErrorIs(t, err, ErrPhasesUnbalanced)
	})

	t.Run("consulting with balanced phases converts", func(t *testing.T) {
		quote := createQuote(t, db, "consulting", 1000, models.QuoteStatusApproved)
		for _, p := range []models.Phase{
			{QuoteID: quote.ID, Name: "Anticipo", Amount: 400, Status: models.PhaseStatusPending},
			{QuoteID: quote.ID, Name: "Entrega", Amount: 600, Status: models.PhaseStatusPending},
		} {
			require.NoError(t, db.Create(&p).Error)
		}

		project, err := svc.ConvertQuote(quote.ID, "admin")
		require.NoError(t, err)
		assert.Equal(t, models.ProjectStatusPendingOnboarding, project.Status)
		assert.Equal(t, quote.ClientEmail, project.ClientEmail)

		var fresh models.Quote
		require.NoError(t, db.First(&fresh, "id = ?", quote.ID).Error)
		assert.Equal(t, models.QuoteStatusConverted, fresh.Status)
		require.NotNil(t, fresh.ProjectID)
		assert.Equal(t, project.ID, *fresh.ProjectID)

		// onboarding email queued, timeline opened
		assert.EqualValues(t, 1, outboxCount(t, db, models.OutboxKindEmail))
		var entries int64
		db.Model(&models.TimelineEntry{}).Where("project_id = ?", project.ID).Count(&entries)
		assert.EqualValues(t, 1, entries)
	})

	t.Run("non-phased services convert without phases", func(t *testing.T) {
		quote := createQuote(t, db, "solar", 8000, models.QuoteStatusApproved)
		project, err := svc.ConvertQuote(quote.ID, "admin")
		require.NoError(t, err)
		assert.NotNil(t, project)
	})

	t.Run("pending_review cannot convert", func(t *testing.T) {
		quote := createQuote(t, db, "solar", 8000, models.QuoteStatusPendingReview)
		_, err := svc.ConvertQuote(quote.ID, "admin")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestPhaseRowOperations(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLifecycleService(db)

	quote := createQuote(t, db, "consulting", 1000, models.QuoteStatusReviewed)

	phase, balanced, err := svc.AddPhase(quote.ID, "Anticipo", 400)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, phase.ID)
	assert.False(t, balanced)

	_, balanced, err = svc.AddPhase(quote.ID, "Entrega", 600)
	require.NoError(t, err)
	assert.True(t, balanced)

	balanced, err = svc.DeletePhase(quote.ID, phase.ID)
	require.NoError(t, err)
	assert.False(t, balanced)

	_, err = svc.DeletePhase(quote.ID, phase.ID)
	assert.ErrorIs(t, err, ErrPhaseNotFound)

	t.Run("terminal quotes are locked", func(t *testing.T) {
		done := createQuote(t, db, "consulting", 1000, models.QuoteStatusConverted)
		_, _, err := svc.AddPhase(done.ID, "Extra", 100)
		assert.ErrorIs(t, err, ErrQuoteLocked)
	})
}

func TestProjectCustomerSteps(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLifecycleService(db)

	quote := createQuote(t, db, "solar", 8000, models.QuoteStatusApproved)
	project := models.ActiveProject{
		QuoteID:     quote.ID,
		ClientName:  quote.ClientName,
		ClientEmail: quote.ClientEmail,
		Service:     quote.Service,
		Status:      models.ProjectStatusPendingPayment,
		Progress:    10,
	}
	require.NoError(t, db.Create(&project).Error)

	t.Run("steps cannot run out of order", func(t *testing.T) {
		_, err := svc.SubmitDocuments(project.ID, "client")
		assert.ErrorIs(t, err, ErrInvalidTransition)
		_, err = svc.ScheduleProject(project.ID, time.Now().AddDate(0, 0, 7), "09:00-12:00", "client")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("payment then documents then scheduling", func(t *testing.T) {
		updated, err := svc.ConfirmPayment(project.ID, "client")
		require.NoError(t, err)
		assert.Equal(t, models.ProjectStatusPendingDocuments, updated.Status)
		assert.Equal(t, 25, updated.Progress)

		updated, err = svc.SubmitDocuments(project.ID, "client")
		require.NoError(t, err)
		assert.Equal(t, models.ProjectStatusPendingScheduling, updated.Status)
		assert.Equal(t, 50, updated.Progress)

		visit := time.Now().AddDate(0, 0, 7)
		updated, err = svc.ScheduleProject(project.ID, visit, "09:00-12:00", "client")
		require.NoError(t, err)
		assert.Equal(t, models.ProjectStatusActive, updated.Status)
		assert.Equal(t, 100, updated.Progress)
		assert.Equal(t, "09:00-12:00", updated.ScheduledTime)
		require.NotNil(t, updated.ScheduledDate)

		// one timeline entry per step
		var entries int64
		db.Model(&models.TimelineEntry{}).Where("project_id = ?", project.ID).Count(&entries)
		assert.EqualValues(t, 3, entries)
	})

	t.Run("repeating a step fails", func(t *testing.T) {
		_, err := svc.ConfirmPayment(project.ID, "client")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestConfirmPaymentRequiresPaidPhases(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLifecycleService(db)

	quote := createQuote(t, db, "consulting", 1000, models.QuoteStatusConverted)
	phase := models.Phase{QuoteID: quote.ID, Name: "Única", Amount: 1000, Status: models.PhaseStatusPending}
	require.NoError(t, db.Create(&phase).Error)

	project := models.ActiveProject{
		QuoteID:     quote.ID,
		ClientName:  quote.ClientName,
		ClientEmail: quote.ClientEmail,
		Service:     quote.Service,
		Status:      models.ProjectStatusPendingPayment,
	}
	require.NoError(t, db.Create(&project).Error)

	_, err := svc.ConfirmPayment(project.ID, "client")
	assert.ErrorIs(t, err, ErrPhasesUnpaid)

	require.NoError(t, svc.PayPhase(quote.ID, phase.ID))

	updated, err := svc.ConfirmPayment(project.ID, "client")
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusPendingDocuments, updated.Status)

	// paying twice is rejected
	assert.ErrorIs(t, svc.PayPhase(quote.ID, phase.ID), ErrPhaseNotFound)
}

func TestAdvanceAppointment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLifecycleService(db)

	quote := createQuote(t, db, "solar", 8000, models.QuoteStatusConverted)
	project := models.ActiveProject{
		QuoteID:     quote.ID,
		ClientName:  quote.ClientName,
		ClientEmail: quote.ClientEmail,
		Service:     quote.Service,
		Status:      models.ProjectStatusActive,
		Progress:    100,
	}
	require.NoError(t, db.Create(&project).Error)

	appt := models.Appointment{
		ProjectID:     &project.ID,
		TechnicianID:  uuid.New(),
		ClientName:    project.ClientName,
		ClientAddress: "Calle 50, Ciudad de Panamá",
		Service:       "solar",
		Date:          time.Now().AddDate(0, 0, 1),
		Status:        models.AppointmentStatusScheduled,
	}
	require.NoError(t, db.Create(&appt).Error)

	t.Run("cannot skip ahead", func(t *testing.T) {
		_, err := svc.AdvanceAppointment(appt.ID, models.AppointmentStatusInProgress)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		_, err = svc.AdvanceAppointment(appt.ID, models.AppointmentStatusCompleted)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("ordered walk to completed queues a review request", func(t *testing.T) {
		for _, next := range []string{
			models.AppointmentStatusOnRoute,
			models.AppointmentStatusInProgress,
			models.AppointmentStatusCompleted,
		} {
			updated, err := svc.AdvanceAppointment(appt.ID, next)
			require.NoError(t, err)
			assert.Equal(t, next, updated.Status)
		}
		assert.EqualValues(t, 1, outboxCount(t, db, models.OutboxKindEmail))
	})

	t.Run("completed is terminal", func(t *testing.T) {
		_, err := svc.AdvanceAppointment(appt.ID, models.AppointmentStatusOnRoute)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}
