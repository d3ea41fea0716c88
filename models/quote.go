package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Quote struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`

	// UserID is nil for anonymous leads submitted through the public form.
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"userId"`

	ClientName  string `gorm:"not null" json:"clientName"`
	ClientEmail string `gorm:"index;not null" json:"clientEmail"`
	ClientPhone string `json:"clientPhone"`

	Service string  `gorm:"not null" json:"service"`
	Amount  float64 `gorm:"type:decimal(10,2);default:0.0" json:"amount"`

	Status string `gorm:"type:varchar(20);not null;default:'pending_review'" json:"status"`

	ReviewedBy *uuid.UUID `gorm:"type:uuid" json:"reviewedBy"`
	ReviewedAt *time.Time `json:"reviewedAt"`

	RejectReason string `json:"rejectReason"`
	Language     string `gorm:"type:varchar(5);default:'es'" json:"language"`

	// Set when the quote is converted into an active project.
	ProjectID *uuid.UUID `gorm:"type:uuid;index" json:"projectId"`

	Phases []Phase `gorm:"foreignKey:QuoteID" json:"phases"`

	gorm.Model `json:"-"`
}

// Phase is a named installment of a quote's total amount. IDs are assigned
// server-side; the legacy portal generated them in the browser and overwrote
// the whole array on every edit.
type Phase struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	QuoteID uuid.UUID `gorm:"type:uuid;index;not null" json:"quoteId"`
	Name    string    `gorm:"not null" json:"name"`
	Amount  float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status  string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"` // pending, paid
}

func (q *Quote) BeforeCreate(tx *gorm.DB) (err error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return
}

func (p *Phase) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
