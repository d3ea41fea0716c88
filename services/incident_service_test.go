package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"teravolta-backend/models"
)

func createTechnician(t *testing.T, db *gorm.DB, specialties ...string) *models.Technician {
	t.Helper()
	user := models.User{
		Email:    uuid.NewString() + "@teravolta.energy",
		Password: "technician-pass",
		FullName: "Técnico de Campo",
		Role:     models.RoleTechnician,
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)

	raw, err := json.Marshal(specialties)
	require.NoError(t, err)
	tech := models.Technician{
		UserID:      user.ID,
		Specialties: datatypes.JSON(raw),
		Active:      true,
	}
	require.NoError(t, db.Create(&tech).Error)
	return &tech
}

func createAppointment(t *testing.T, db *gorm.DB, technicianID uuid.UUID, service string) *models.Appointment {
	t.Helper()
	appt := models.Appointment{
		TechnicianID:  technicianID,
		ClientName:    "Luis Gómez",
		ClientAddress: "Vía España, Ciudad de Panamá",
		Service:       service,
		Date:          time.Now().AddDate(0, 0, 2),
		Status:        models.AppointmentStatusScheduled,
	}
	require.NoError(t, db.Create(&appt).Error)
	return &appt
}

func TestReportIncidentReassigns(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIncidentService(db)

	original := createTechnician(t, db, "solar")
	replacement := createTechnician(t, db, "solar", "ev_charging")
	appt := createAppointment(t, db, original.ID, "solar")

	report, err := svc.ReportIncident(appt.ID, "vehículo averiado", "sin acceso al sitio")
	require.NoError(t, err)
	assert.Equal(t, IncidentOutcomeReassigned, report.Outcome)
	require.NotNil(t, report.NewTechnician)
	assert.Equal(t, replacement.ID, report.NewTechnician.ID)

	var fresh models.Appointment
	require.NoError(t, db.First(&fresh, "id = ?", appt.ID).Error)
	assert.Equal(t, replacement.ID, fresh.TechnicianID)
	assert.Equal(t, models.AppointmentStatusScheduled, fresh.Status)
	assert.Equal(t, "vehículo averiado", fresh.IncidentReason)
}

func TestReportIncidentSkipsUnqualifiedAndOnLeave(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIncidentService(db)

	original := createTechnician(t, db, "solar")
	createTechnician(t, db, "consulting") // wrong specialty

	onLeave := createTechnician(t, db, "solar")
	require.NoError(t, db.Create(&models.Leave{
		TechnicianID: onLeave.ID,
		StartDate:    time.Now(),
		EndDate:      time.Now().AddDate(0, 0, 7),
		Type:         "vacation",
		Status:       models.LeaveStatusApproved,
	}).Error)

	admin := models.User{
		Email:    "admin@teravolta.energy",
		Password: "admin-pass",
		FullName: "Admin",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	require.NoError(t, db.Create(&admin).Error)

	appt := createAppointment(t, db, original.ID, "solar")

	report, err := svc.ReportIncident(appt.ID, "enfermedad", "")
	require.NoError(t, err)
	assert.Equal(t, IncidentOutcomeManualReschedule, report.Outcome)
	assert.Nil(t, report.NewTechnician)

	// the appointment keeps its technician and an admin alert is queued
	var fresh models.Appointment
	require.NoError(t, db.First(&fresh, "id = ?", appt.ID).Error)
	assert.Equal(t, original.ID, fresh.TechnicianID)
	assert.EqualValues(t, 1, outboxCount(t, db, models.OutboxKindNotification))
}

func TestReportIncidentValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIncidentService(db)

	tech := createTechnician(t, db, "solar")
	appt := createAppointment(t, db, tech.ID, "solar")

	_, err := svc.ReportIncident(appt.ID, "", "comentario")
	assert.ErrorIs(t, err, ErrMissingReason)

	require.NoError(t, db.Model(&models.Appointment{}).Where("id = ?", appt.ID).
		Update("status", models.AppointmentStatusCompleted).Error)
	_, err = svc.ReportIncident(appt.ID, "motivo", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.ReportIncident(uuid.New(), "motivo", "")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestPendingLeaveDoesNotBlockReassignment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIncidentService(db)

	original := createTechnician(t, db, "solar")
	candidate := createTechnician(t, db, "solar")
	require.NoError(t, db.Create(&models.Leave{
		TechnicianID: candidate.ID,
		StartDate:    time.Now(),
		EndDate:      time.Now().AddDate(0, 0, 7),
		Type:         "vacation",
		Status:       models.LeaveStatusPending,
	}).Error)

	appt := createAppointment(t, db, original.ID, "solar")

	report, err := svc.ReportIncident(appt.ID, "conflicto de agenda", "")
	require.NoError(t, err)
	assert.Equal(t, IncidentOutcomeReassigned, report.Outcome)
}
