// services/transitions.go
package services

import "teravolta-backend/models"

// Allowed status transitions per entity. Anything not listed is illegal and
// rejected with ErrInvalidTransition before any write happens.

var QuoteTransitions = map[string]map[string]bool{
	models.QuoteStatusPendingReview: {
		models.QuoteStatusReviewed:  true,
		models.QuoteStatusRejected:  true,
		models.QuoteStatusCancelled: true,
	},
	models.QuoteStatusReviewed: {
		models.QuoteStatusApproved:  true,
		models.QuoteStatusRejected:  true,
		models.QuoteStatusCancelled: true,
		models.QuoteStatusConverted: true,
	},
	models.QuoteStatusApproved: {
		models.QuoteStatusPaid:      true,
		models.QuoteStatusConverted: true,
		models.QuoteStatusRejected:  true,
		models.QuoteStatusCancelled: true,
	},
	models.QuoteStatusPaid: {
		models.QuoteStatusConverted: true,
	},
	models.QuoteStatusRejected:  {},
	models.QuoteStatusCancelled: {},
	models.QuoteStatusConverted: {},
}

// Customer steps are strictly linear; admin edges branch from active.
var ProjectTransitions = map[string]map[string]bool{
	models.ProjectStatusPendingOnboarding: {
		models.ProjectStatusPendingPayment: true,
	},
	models.ProjectStatusPendingPayment: {
		models.ProjectStatusPendingDocuments: true,
	},
	models.ProjectStatusPendingDocuments: {
		models.ProjectStatusPendingScheduling: true,
	},
	models.ProjectStatusPendingScheduling: {
		models.ProjectStatusActive: true,
	},
	models.ProjectStatusActive: {
		models.ProjectStatusPaused:        true,
		models.ProjectStatusPendingClient: true,
		models.ProjectStatusInReview:      true,
		models.ProjectStatusCompleted:     true,
	},
	models.ProjectStatusPaused: {
		models.ProjectStatusActive: true,
	},
	models.ProjectStatusPendingClient: {
		models.ProjectStatusActive: true,
	},
	models.ProjectStatusInReview: {
		models.ProjectStatusActive:    true,
		models.ProjectStatusCompleted: true,
	},
	models.ProjectStatusCompleted: {},
}

var AppointmentTransitions = map[string]map[string]bool{
	models.AppointmentStatusScheduled: {
		models.AppointmentStatusOnRoute:   true,
		models.AppointmentStatusCancelled: true,
	},
	models.AppointmentStatusOnRoute: {
		models.AppointmentStatusInProgress: true,
		models.AppointmentStatusCancelled:  true,
	},
	models.AppointmentStatusInProgress: {
		models.AppointmentStatusCompleted: true,
	},
	models.AppointmentStatusCompleted: {},
	models.AppointmentStatusCancelled: {},
}

var InquiryTransitions = map[string]map[string]bool{
	models.InquiryStatusNew: {
		models.InquiryStatusInProcess: true,
		models.InquiryStatusCompleted: true,
		models.InquiryStatusClosed:    true,
	},
	models.InquiryStatusInProcess: {
		models.InquiryStatusCompleted: true,
		models.InquiryStatusClosed:    true,
	},
	models.InquiryStatusCompleted: {
		models.InquiryStatusClosed: true,
	},
	models.InquiryStatusClosed: {},
}

func CanTransition(table map[string]map[string]bool, current, next string) bool {
	nexts, ok := table[current]
	if !ok {
		return false
	}
	return nexts[next]
}
