// services/phase.go
package services

import (
	"math"

	"teravolta-backend/models"
)

// PhaseSumEpsilon absorbs float rounding when comparing the phase sum
// against the quote amount.
const PhaseSumEpsilon = 0.01

// PhasesBalanced reports whether the phase amounts add up to the quote total.
func PhasesBalanced(phases []models.Phase, amount float64) bool {
	var sum float64
	for _, p := range phases {
		sum += p.Amount
	}
	return math.Abs(sum-amount) <= PhaseSumEpsilon
}

// AllPhasesPaid reports whether every phase has been paid. True for an empty
// set: quotes without itemized phases settle in a single payment.
func AllPhasesPaid(phases []models.Phase) bool {
	for _, p := range phases {
		if p.Status != models.PhaseStatusPaid {
			return false
		}
	}
	return true
}

// Services whose quotes must be fully itemized into phases before conversion.
var phasedServices = map[string]bool{
	"consulting": true,
	"advocacy":   true,
}

// RequiresPhases reports whether a quote for the given service must carry a
// balanced phase breakdown before it can become a project.
func RequiresPhases(service string, amount float64) bool {
	return phasedServices[service] && amount > 0
}
