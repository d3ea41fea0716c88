package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Appointment struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID    *uuid.UUID `gorm:"type:uuid;index" json:"projectId"`
	TechnicianID uuid.UUID  `gorm:"type:uuid;index;not null" json:"technicianId"`

	ClientName    string `gorm:"not null" json:"clientName"`
	ClientAddress string `gorm:"not null" json:"clientAddress"`
	Service       string `json:"service"`

	Date     time.Time `gorm:"index;not null" json:"date"`
	TimeSlot string    `gorm:"type:varchar(20)" json:"timeSlot"`

	Status string `gorm:"type:varchar(20);not null;default:'scheduled'" json:"status"`

	// Photo URLs captured on site.
	Photos datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"photos"`
	Notes  string         `gorm:"type:text" json:"notes"`

	IncidentReason  string `json:"incidentReason"`
	IncidentComment string `gorm:"type:text" json:"incidentComment"`

	gorm.Model `json:"-"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if len(a.Photos) == 0 {
		a.Photos = datatypes.JSON([]byte("[]"))
	}
	return
}
