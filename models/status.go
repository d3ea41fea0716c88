// models/status.go
package models

// Canonical status values. The legacy portal spelled several of these
// inconsistently across screens (pending vs pending_review, reviewed vs
// in_review); these constants are the single source of truth.

// InquiryStatus values for public contact-form leads.
const (
	InquiryStatusNew       = "new"
	InquiryStatusInProcess = "in_process"
	InquiryStatusCompleted = "completed"
	InquiryStatusClosed    = "closed"
)

// QuoteStatus values.
const (
	QuoteStatusPendingReview = "pending_review"
	QuoteStatusReviewed      = "reviewed"
	QuoteStatusApproved      = "approved"
	QuoteStatusPaid          = "paid"
	QuoteStatusRejected      = "rejected"
	QuoteStatusCancelled     = "cancelled"
	QuoteStatusConverted     = "converted"
)

// PhaseStatus values for payment phases.
const (
	PhaseStatusPending = "pending"
	PhaseStatusPaid    = "paid"
)

// ProjectStatus values for active projects.
const (
	ProjectStatusPendingOnboarding = "pending_onboarding"
	ProjectStatusPendingPayment    = "pending_payment"
	ProjectStatusPendingDocuments  = "pending_documents"
	ProjectStatusPendingScheduling = "pending_scheduling"
	ProjectStatusActive            = "active"
	ProjectStatusPaused            = "paused"
	ProjectStatusPendingClient     = "pending_client"
	ProjectStatusInReview          = "in_review"
	ProjectStatusCompleted         = "completed"
)

// AppointmentStatus values for technician visits.
const (
	AppointmentStatusScheduled  = "scheduled"
	AppointmentStatusOnRoute    = "on_route"
	AppointmentStatusInProgress = "in_progress"
	AppointmentStatusCompleted  = "completed"
	AppointmentStatusCancelled  = "cancelled"
)

// LeaveStatus values for technician leave requests.
const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)

// User roles.
const (
	RoleCustomer   = "customer"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
	RoleTechnician = "technician"
)

// Timeline event types appended to a project's activity log.
const (
	EventTypeProjectCreated     = "project_created"
	EventTypeStageChange        = "stage_change"
	EventTypePaymentConfirmed   = "payment_confirmed"
	EventTypeDocumentsSubmitted = "documents_submitted"
	EventTypeVisitScheduled     = "visit_scheduled"
	EventTypeNote               = "note"
)

// Outbox message kinds and statuses.
const (
	OutboxKindEmail        = "email"
	OutboxKindSMS          = "sms"
	OutboxKindNotification = "notification"

	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)
