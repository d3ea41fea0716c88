package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActiveProject struct {
	ID      uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	QuoteID uuid.UUID  `gorm:"type:uuid;index;not null" json:"quoteId"`
	UserID  *uuid.UUID `gorm:"type:uuid;index" json:"userId"`

	ClientName  string `gorm:"not null" json:"clientName"`
	ClientEmail string `gorm:"not null" json:"clientEmail"`
	Service     string `gorm:"not null" json:"service"`

	Status   string `gorm:"type:varchar(30);not null;default:'pending_onboarding'" json:"status"`
	Progress int    `gorm:"default:0" json:"progress"` // 0-100

	ScheduledDate *time.Time `json:"scheduledDate"`
	ScheduledTime string     `gorm:"type:varchar(20)" json:"scheduledTime"` // e.g. "09:00-12:00"

	Timeline  []TimelineEntry   `gorm:"foreignKey:ProjectID" json:"timeline"`
	Documents []ProjectDocument `gorm:"foreignKey:ProjectID" json:"documents"`

	gorm.Model `json:"-"`
}

// TimelineEntry is an append-only activity log line on a project.
type TimelineEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;index;not null" json:"projectId"`
	EventType string    `gorm:"type:varchar(30);not null" json:"eventType"`
	Title     string    `gorm:"not null" json:"title"`
	Detail    string    `gorm:"type:text" json:"detail"`
	Actor     string    `gorm:"type:varchar(100)" json:"actor"` // email of the user, or "system"
	CreatedAt time.Time `json:"createdAt"`
}

type ProjectDocument struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;index;not null" json:"projectId"`
	FileName    string    `gorm:"not null" json:"fileName"`
	URL         string    `gorm:"not null" json:"url"`
	ContentType string    `gorm:"type:varchar(100)" json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedBy  string    `gorm:"type:varchar(100)" json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p *ActiveProject) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

func (t *TimelineEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

func (d *ProjectDocument) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
