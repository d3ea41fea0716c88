// services/incident_service.go
package services

import (
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"teravolta-backend/models"
	"teravolta-backend/utils"
)

// Incident outcomes.
const (
	IncidentOutcomeReassigned       = "reassigned"
	IncidentOutcomeManualReschedule = "manual_reschedule"
)

// IncidentReport is the result of handling a technician incident.
type IncidentReport struct {
	Outcome       string             `json:"outcome"`
	NewTechnician *models.Technician `json:"newTechnician,omitempty"`
}

// IncidentService handles a technician reporting they cannot serve an
// appointment: it tries to hand the visit to another qualified technician,
// and otherwise flags it for manual rescheduling by an admin.
type IncidentService struct {
	db *gorm.DB
}

func NewIncidentService(db *gorm.DB) *IncidentService {
	return &IncidentService{db: db}
}

// ReportIncident records the reason on the appointment and either reassigns
// it (outcome reassigned) or raises an admin alert (outcome
// manual_reschedule). The appointment stays scheduled either way.
func (s *IncidentService) ReportIncident(appointmentID uuid.UUID, reason, comment string) (*IncidentReport, error) {
	if reason == "" {
		return nil, ErrMissingReason
	}

	var report IncidentReport
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var appt models.Appointment
		if err := tx.First(&appt, "id = ?", appointmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAppointmentNotFound
			}
			return err
		}
		if appt.Status == models.AppointmentStatusCompleted ||
			appt.Status == models.AppointmentStatusCancelled {
			return ErrInvalidTransition
		}

		replacement, err := s.findReplacement(tx, &appt)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"incident_reason":  reason,
			"incident_comment": comment,
			"status":           models.AppointmentStatusScheduled,
		}
		if replacement != nil {
			updates["technician_id"] = replacement.ID
			report = IncidentReport{Outcome: IncidentOutcomeReassigned, NewTechnician: replacement}
		} else {
			report = IncidentReport{Outcome: IncidentOutcomeManualReschedule}
		}
		if err := tx.Model(&models.Appointment{}).Where("id = ?", appt.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		if replacement == nil {
			return s.alertAdmins(tx, &appt, reason)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// findReplacement picks an active technician, other than the current one,
// who covers the appointment's service and has no approved leave on its date.
func (s *IncidentService) findReplacement(tx *gorm.DB, appt *models.Appointment) (*models.Technician, error) {
	var technicians []models.Technician
	if err := tx.Where("active = ? AND id <> ?", true, appt.TechnicianID).
		Find(&technicians).Error; err != nil {
		return nil, err
	}

	for i := range technicians {
		t := &technicians[i]
		if appt.Service != "" && !hasSpecialty(t, appt.Service) {
			continue
		}
		onLeave, err := s.onLeave(tx, t.ID, appt)
		if err != nil {
			return nil, err
		}
		if onLeave {
			continue
		}
		return t, nil
	}
	return nil, nil
}

func hasSpecialty(t *models.Technician, service string) bool {
	for _, s := range t.SpecialtyList() {
		if s == service {
			return true
		}
	}
	return false
}

func (s *IncidentService) onLeave(tx *gorm.DB, technicianID uuid.UUID, appt *models.Appointment) (bool, error) {
	var leaves []models.Leave
	if err := tx.Where("technician_id = ? AND status = ?", technicianID,
		models.LeaveStatusApproved).Find(&leaves).Error; err != nil {
		return false, err
	}
	for _, l := range leaves {
		if utils.DateRangesOverlap(l.StartDate, l.EndDate, appt.Date, appt.Date) {
			return true, nil
		}
	}
	return false, nil
}

func (s *IncidentService) alertAdmins(tx *gorm.DB, appt *models.Appointment, reason string) error {
	var admins []models.User
	if err := tx.Where("role IN ? AND is_active = ?",
		[]string{models.RoleAdmin, models.RoleSuperAdmin}, true).Find(&admins).Error; err != nil {
		return err
	}
	for _, admin := range admins {
		if err := EnqueueNotification(tx, NotificationPayload{
			UserID: admin.ID,
			Title:  "Cita requiere reprogramación",
			Body:   "Incidente en cita de " + appt.ClientName + ": " + reason,
			Kind:   "incident",
		}); err != nil {
			return err
		}
	}
	if len(admins) == 0 {
		log.Printf("Incident on appointment %s has no admin to notify", appt.ID)
	}
	return nil
}
