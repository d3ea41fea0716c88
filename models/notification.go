package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	Title  string    `gorm:"not null" json:"title"`
	Body   string    `gorm:"type:text" json:"body"`
	Kind   string    `gorm:"type:varchar(30)" json:"kind"` // quote_reviewed, quote_rejected, incident, ...

	ReadAt *time.Time `json:"readAt"`

	gorm.Model `json:"-"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
