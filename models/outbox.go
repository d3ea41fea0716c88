// models/outbox.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OutboxMessage is a pending side effect (email, SMS, in-app notification)
// recorded in the same transaction as the state change that caused it. The
// dispatcher delivers these with retries; the legacy portal fired them from
// the browser and dropped them on failure.
type OutboxMessage struct {
	ID      uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Kind    string         `gorm:"type:varchar(20);not null" json:"kind"` // email, sms, notification
	Payload datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`

	Status    string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"` // pending, sent, failed
	Attempts  int        `gorm:"default:0" json:"attempts"`
	LastError string     `gorm:"type:text" json:"lastError"`
	SentAt    *time.Time `json:"sentAt"`

	gorm.Model `json:"-"`
}

func (m *OutboxMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
