package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Technician struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`

	// e.g. ["solar", "ev_charging", "consulting"]
	Specialties datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"specialties"`

	WorkingHours JSONB `gorm:"type:jsonb;default:'{}'" json:"workingHours"`
	Active       bool  `gorm:"default:true" json:"active"`

	gorm.Model `json:"-"`
}

type Leave struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TechnicianID uuid.UUID `gorm:"type:uuid;index;not null" json:"technicianId"`
	StartDate    time.Time `gorm:"not null" json:"startDate"`
	EndDate      time.Time `gorm:"not null" json:"endDate"`
	Type         string    `gorm:"type:varchar(20)" json:"type"` // vacation, sick, personal
	Reason       string    `json:"reason"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"` // pending, approved, rejected

	gorm.Model `json:"-"`
}

func (t *Technician) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if len(t.Specialties) == 0 {
		t.Specialties = datatypes.JSON([]byte("[]"))
	}
	return
}

func (l *Leave) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}

// SpecialtyList decodes the specialties JSON column.
func (t *Technician) SpecialtyList() []string {
	var out []string
	if err := json.Unmarshal(t.Specialties, &out); err != nil {
		return nil
	}
	return out
}

// Custom JSONB type for working hours
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.New("unsupported type for JSONB scan")
	}
}
