// services/lifecycle_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"teravolta-backend/models"
)

var (
	ErrQuoteNotFound       = errors.New("quote not found")
	ErrProjectNotFound     = errors.New("project not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPhaseNotFound       = errors.New("phase not found")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrPhasesRequired      = errors.New("quote requires a phase breakdown before conversion")
	ErrPhasesUnbalanced    = errors.New("phase amounts do not add up to the quote amount")
	ErrPhasesUnpaid        = errors.New("all phases must be paid first")
	ErrQuoteLocked         = errors.New("quote is in a terminal status")
	ErrMissingReason       = errors.New("a reason is required")
)

// LifecycleService owns every status transition for quotes, projects and
// appointments. Each operation is a single transaction: the compare-and-swap
// on status and the outbox rows for its side effects commit together, so two
// concurrent callers cannot skip or repeat a step and no notification is
// fired for a transition that did not happen.
type LifecycleService struct {
	db *gorm.DB
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{db: db}
}

// casStatus updates status (plus extra columns) only if the row is still in
// the expected status. Returns false when another writer got there first.
func casStatus(tx *gorm.DB, model interface{}, id uuid.UUID, from, to string, extra map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := tx.Model(model).Where("id = ? AND status = ?", id, from).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *LifecycleService) loadQuote(tx *gorm.DB, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	if err := tx.Preload("Phases").First(&quote, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, err
	}
	return &quote, nil
}

// ReviewQuote moves a quote from pending_review to reviewed, stamps the
// reviewer and enqueues the informational email + notification.
func (s *LifecycleService) ReviewQuote(id, reviewerID uuid.UUID) (*models.Quote, error) {
	var quote *models.Quote
	err := s.db.Transaction(func(tx *gorm.DB) error {
		q, err := s.loadQuote(tx, id)
		if err != nil {
			return err
		}
		now := time.Now()
		ok, err := casStatus(tx, &models.Quote{}, id, models.QuoteStatusPendingReview,
			models.QuoteStatusReviewed, map[string]interface{}{
				"reviewed_by": reviewerID,
				"reviewed_at": &now,
			})
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}

		subject, body := ReviewedEmail(q)
		if err := EnqueueEmail(tx, EmailPayload{
			To:              q.ClientEmail,
			Subject:         subject,
			Body:            body,
			UserID:          q.UserID,
			PreferenceCheck: q.UserID != nil,
		}); err != nil {
			return err
		}
		if q.UserID != nil {
			if err := EnqueueNotification(tx, NotificationPayload{
				UserID: *q.UserID,
				Title:  "Cotización en revisión",
				Body:   "Su solicitud de " + q.Service + " está siendo revisada.",
				Kind:   "quote_reviewed",
			}); err != nil {
				return err
			}
		}

		quote, err = s.loadQuote(tx, id)
		return err
	})
	return quote, err
}

// ApproveQuote moves a reviewed quote to approved.
func (s *LifecycleService) ApproveQuote(id uuid.UUID) (*models.Quote, error) {
	var quote *models.Quote
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := casStatus(tx, &models.Quote{}, id, models.QuoteStatusReviewed,
			models.QuoteStatusApproved, nil)
		if err != nil {
			return err
		}
		if !ok {
			if _, lerr := s.loadQuote(tx, id); lerr != nil {
				return lerr
			}
			return ErrInvalidTransition
		}
		quote, err = s.loadQuote(tx, id)
		return err
	})
	return quote, err
}

// MarkQuotePaid moves an approved quote to paid.
func (s *LifecycleService) MarkQuotePaid(id uuid.UUID) (*models.Quote, error) {
	var quote *models.Quote
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := casStatus(tx, &models.Quote{}, id, models.QuoteStatusApproved,
			models.QuoteStatusPaid, nil)
		if err != nil {
			return err
		}
		if !ok {
			if _, lerr := s.loadQuote(tx, id); lerr != nil {
				return lerr
			}
			return ErrInvalidTransition
		}
		quote, err = s.loadQuote(tx, id)
		return err
	})
	return quote, err
}

// RejectQuote moves a quote to rejected and enqueues the localized rejection
// email plus an in-app notification for registered clients. The preference
// check is bypassed for anonymous leads.
func (s *LifecycleService) RejectQuote(id, reviewerID uuid.UUID, reason string) (*models.Quote, error) {
	if reason == "" {
		return nil, ErrMissingReason
	}

	var quote *models.Quote
	err := s.db.Transaction(func(tx *gorm.DB) error {
		q, err := s.loadQuote(tx, id)
		if err != nil {
			return err
		}
		if !CanTransition(QuoteTransitions, q.Status, models.QuoteStatusRejected) {
			return ErrInvalidTransition
		}
		ok, err := casStatus(tx, &models.Quote{}, id, q.Status,
			models.QuoteStatusRejected, map[string]interface{}{
				"reject_reason": reason,
				"reviewed_by":   reviewerID,
			})
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}

		subject, body := RejectionEmail(q, reason)
		if err := EnqueueEmail(tx, EmailPayload{
			To:              q.ClientEmail,
			Subject:         subject,
			Body:            body,
			UserID:          q.UserID,
			PreferenceCheck: q.UserID != nil,
		}); err != nil {
			return err
		}
		if q.UserID != nil {
			if err := EnqueueNotification(tx, NotificationPayload{
				UserID: *q.UserID,
				Title:  "Cotización rechazada",
				Body:   reason,
				Kind:   "quote_rejected",
			}); err != nil {
				return err
			}
		}

		quote, err = s.loadQuote(tx, id)
		return err
	})
	return quote, err
}

// CancelQuote moves a non-terminal quote to cancelled.
func (s *LifecycleService) CancelQuote(id uuid.UUID) (*models.Quote, error) {
	var quote *models.Quote
	err := s.db.Transaction(func(tx *gorm.DB) error {
		q, err := s.loadQuote(tx, id)
		if err != nil {
			return err
		}
		if !CanTransition(QuoteTransitions, q.Status, models.QuoteStatusCancelled) {
			return ErrInvalidTransition
		}
		ok, err := casStatus(tx, &models.Quote{}, id, q.Status, models.QuoteStatusCancelled, nil)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}
		quote, err = s.loadQuote(tx, id)
		return err
	})
	return quote, err
}

// OnboardQuote converts an approved or paid quote by sending the client a
// magic sign-in link with onboarding instructions. Returns the link.
func (s *LifecycleService) OnboardQuote(id uuid.UUID) (string, error) {
	var link string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		q, err := s.loadQuote(tx, id)
		if err != nil {
			return err
		}
		if !CanTransition(QuoteTransitions, q.Status, models.QuoteStatusConverted) {
			return ErrInvalidTransition
		}

		link, err = CreateMagicLink(q.ClientEmail)
		if err != nil {
			return err
		}

		ok, err := casStatus(tx, &models.Quote{}, id, q.Status, models.QuoteStatusConverted, nil)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}

		subject, body := OnboardingEmail(q, link)
		return EnqueueEmail(tx, EmailPayload{
			To:      q.ClientEmail,
			Subject: subject,
			Body:    body,
			UserID:  q.UserID,
		})
	})
	return link, err
}

// ConvertQuote turns a quote into an active project. Consulting and advocacy
// quotes with a positive amount must carry a balanced phase breakdown.
func (s *LifecycleService) ConvertQuote(id uuid.UUID, actor string) (*models.ActiveProject, error) {
	var project *models.ActiveProject
	err := s.db.Transaction(func(tx *gorm.DB) error {
		q, err := s.loadQuote(tx, id)
		if err != nil {
			return err
		}
		if !CanTransition(QuoteTransitions, q.Status, models.QuoteStatusConverted) {
			return ErrInvalidTransition
		}
		if RequiresPhases(q.Service, q.Amount) {
			if len(q.Phases) == 0 {
				return ErrPhasesRequired
			}
			if !PhasesBalanced(q.Phases, q.Amount) {
				return ErrPhasesUnbalanced
			}
		}

		p := models.ActiveProject{
			QuoteID:     q.ID,
			UserID:      q.UserID,
			ClientName:  q.ClientName,
			ClientEmail: q.ClientEmail,
			Service:     q.Service,
			Status:      models.ProjectStatusPendingOnboarding,
			Progress:    0,
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.TimelineEntry{
			ProjectID: p.ID,
			EventType: models.EventTypeProjectCreated,
			Title:     "Proyecto creado",
			Detail:    "Proyecto creado a partir de la cotización aprobada.",
			Actor:     actor,
		}).Error; err != nil {
			return err
		}

		ok, err := casStatus(tx, &models.Quote{}, id, q.Status,
			models.QuoteStatusConverted, map[string]interface{}{"project_id": p.ID})
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}

		link, err := CreateMagicLink(q.ClientEmail)
		if err != nil {
			return err
		}
		subject, body := OnboardingEmail(q, link)
		if err := EnqueueEmail(tx, EmailPayload{
			To:      q.ClientEmail,
			Subject: subject,
			Body:    body,
			UserID:  q.UserID,
		}); err != nil {
			return err
		}

		project = &p
		return nil
	})
	return project, err
}

// AddPhase appends a server-assigned phase row to a non-terminal quote.
// The second return value reports whether the phases now balance the amount.
func (s *LifecycleService) AddPhase(quoteID uuid.UUID, name string, amount float64) (*models.Phase, bool, error) {
	var phase models.Phase
	var balanced bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		q, err := s.loadQuote(tx, quoteID)
		if err != nil {
			return err
		}
		if len(QuoteTransitions[q.Status]) == 0 {
			return ErrQuoteLocked
		}
		phase = models.Phase{
			QuoteID: quoteID,
			Name:    name,
			Amount:  amount,
			Status:  models.PhaseStatusPending,
		}
		if err := tx.Create(&phase).Error; err != nil {
			return err
		}
		balanced = PhasesBalanced(append(q.Phases, phase), q.Amount)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &phase, balanced, nil
}

// DeletePhase removes a phase row from a non-terminal quote.
func (s *LifecycleService) DeletePhase(quoteID, phaseID uuid.UUID) (bool, error) {
	var balanced bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		q, err := s.loadQuote(tx, quoteID)
		if err != nil {
			return err
		}
		if len(QuoteTransitions[q.Status]) == 0 {
			return ErrQuoteLocked
		}
		res := tx.Where("id = ? AND quote_id = ?", phaseID, quoteID).Delete(&models.Phase{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPhaseNotFound
		}

		remaining := make([]models.Phase, 0, len(q.Phases))
		for _, p := range q.Phases {
			if p.ID != phaseID {
				remaining = append(remaining, p)
			}
		}
		balanced = PhasesBalanced(remaining, q.Amount)
		return nil
	})
	return balanced, err
}

// PayPhase marks a pending phase as paid.
func (s *LifecycleService) PayPhase(quoteID, phaseID uuid.UUID) error {
	res := s.db.Model(&models.Phase{}).
		Where("id = ? AND quote_id = ? AND status = ?", phaseID, quoteID, models.PhaseStatusPending).
		Update("status", models.PhaseStatusPaid)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPhaseNotFound
	}
	return nil
}

func (s *LifecycleService) loadProject(tx *gorm.DB, id uuid.UUID) (*models.ActiveProject, error) {
	var project models.ActiveProject
	if err := tx.Preload("Timeline").Preload("Documents").First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (s *LifecycleService) advanceProject(tx *gorm.DB, id uuid.UUID, from, to string,
	progress int, eventType, title, actor string, extra map[string]interface{}) error {
	updates := map[string]interface{}{"progress": progress}
	for k, v := range extra {
		updates[k] = v
	}
	ok, err := casStatus(tx, &models.ActiveProject{}, id, from, to, updates)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTransition
	}
	return tx.Create(&models.TimelineEntry{
		ProjectID: id,
		EventType: eventType,
		Title:     title,
		Actor:     actor,
	}).Error
}

// BeginPayment moves a freshly onboarded project to the payment step (admin).
func (s *LifecycleService) BeginPayment(id uuid.UUID, actor string) (*models.ActiveProject, error) {
	var project *models.ActiveProject
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadProject(tx, id); err != nil {
			return err
		}
		if err := s.advanceProject(tx, id, models.ProjectStatusPendingOnboarding,
			models.ProjectStatusPendingPayment, 10, models.EventTypeStageChange,
			"Incorporación completada", actor, nil); err != nil {
			return err
		}
		var err error
		project, err = s.loadProject(tx, id)
		return err
	})
	return project, err
}

// ConfirmPayment advances pending_payment to pending_documents. When the
// originating quote is itemized, every phase must be paid first.
func (s *LifecycleService) ConfirmPayment(id uuid.UUID, actor string) (*models.ActiveProject, error) {
	var project *models.ActiveProject
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.loadProject(tx, id)
		if err != nil {
			return err
		}
		var phases []models.Phase
		if err := tx.Where("quote_id = ?", p.QuoteID).Find(&phases).Error; err != nil {
			return err
		}
		if !AllPhasesPaid(phases) {
			return ErrPhasesUnpaid
		}
		if err := s.advanceProject(tx, id, models.ProjectStatusPendingPayment,
			models.ProjectStatusPendingDocuments, 25, models.EventTypePaymentConfirmed,
			"Pago confirmado", actor, nil); err != nil {
			return err
		}
		project, err = s.loadProject(tx, id)
		return err
	})
	return project, err
}

// SubmitDocuments advances pending_documents to pending_scheduling.
func (s *LifecycleService) SubmitDocuments(id uuid.UUID, actor string) (*models.ActiveProject, error) {
	var project *models.ActiveProject
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadProject(tx, id); err != nil {
			return err
		}
		if err := s.advanceProject(tx, id, models.ProjectStatusPendingDocuments,
			models.ProjectStatusPendingScheduling, 50, models.EventTypeDocumentsSubmitted,
			"Documentos enviados", actor, nil); err != nil {
			return err
		}
		var err error
		project, err = s.loadProject(tx, id)
		return err
	})
	return project, err
}

// ScheduleProject attaches a visit slot and activates the project.
func (s *LifecycleService) ScheduleProject(id uuid.UUID, date time.Time, timeSlot, actor string) (*models.ActiveProject, error) {
	var project *models.ActiveProject
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadProject(tx, id); err != nil {
			return err
		}
		if err := s.advanceProject(tx, id, models.ProjectStatusPendingScheduling,
			models.ProjectStatusActive, 100, models.EventTypeVisitScheduled,
			"Visita programada", actor, map[string]interface{}{
				"scheduled_date": date,
				"scheduled_time": timeSlot,
			}); err != nil {
			return err
		}
		var err error
		project, err = s.loadProject(tx, id)
		return err
	})
	return project, err
}

// TransitionProject performs an admin edge (pause, resume, request client
// action, review, complete) guarded by the transition table.
func (s *LifecycleService) TransitionProject(id uuid.UUID, to, actor string) (*models.ActiveProject, error) {
	var project *models.ActiveProject
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.loadProject(tx, id)
		if err != nil {
			return err
		}
		if !CanTransition(ProjectTransitions, p.Status, to) {
			return ErrInvalidTransition
		}
		progress := p.Progress
		if to == models.ProjectStatusCompleted {
			progress = 100
		}
		if err := s.advanceProject(tx, id, p.Status, to, progress,
			models.EventTypeStageChange, "Estado actualizado: "+to, actor, nil); err != nil {
			return err
		}
		project, err = s.loadProject(tx, id)
		return err
	})
	return project, err
}

// AdvanceAppointment moves an appointment one step along its state machine.
// Reaching completed enqueues a review request for the project's client.
func (s *LifecycleService) AdvanceAppointment(id uuid.UUID, next string) (*models.Appointment, error) {
	var appointment *models.Appointment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var appt models.Appointment
		if err := tx.First(&appt, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAppointmentNotFound
			}
			return err
		}
		if !CanTransition(AppointmentTransitions, appt.Status, next) {
			return ErrInvalidTransition
		}
		ok, err := casStatus(tx, &models.Appointment{}, id, appt.Status, next, nil)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}

		if next == models.AppointmentStatusCompleted && appt.ProjectID != nil {
			var project models.ActiveProject
			if err := tx.First(&project, "id = ?", *appt.ProjectID).Error; err == nil {
				subject, body := ReviewRequestEmail(project.ClientName, "es")
				if err := EnqueueEmail(tx, EmailPayload{
					To:              project.ClientEmail,
					Subject:         subject,
					Body:            body,
					UserID:          project.UserID,
					PreferenceCheck: project.UserID != nil,
				}); err != nil {
					return err
				}
			}
		}

		if err := tx.First(&appt, "id = ?", id).Error; err != nil {
			return err
		}
		appointment = &appt
		return nil
	})
	return appointment, err
}
