package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Inquiry struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FullName string    `gorm:"not null" json:"fullName"`
	Email    string    `gorm:"index;not null" json:"email"`
	Phone    string    `gorm:"index" json:"phone"`
	Country  string    `json:"country"` // derived from the phone dial code at intake
	Service  string    `json:"service"`
	Message  string    `gorm:"type:text" json:"message"`

	Status string `gorm:"type:varchar(20);not null;default:'new'" json:"status"` // new, in_process, completed, closed

	Attachments []InquiryAttachment `gorm:"foreignKey:InquiryID;constraint:OnDelete:CASCADE" json:"attachments"`

	gorm.Model `json:"-"`
}

type InquiryAttachment struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InquiryID   uuid.UUID `gorm:"type:uuid;index;not null" json:"inquiryId"`
	FileName    string    `gorm:"not null" json:"fileName"`
	URL         string    `gorm:"not null" json:"url"`
	ContentType string    `gorm:"type:varchar(100)" json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
}

func (i *Inquiry) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

func (a *InquiryAttachment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
