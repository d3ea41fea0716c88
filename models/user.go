package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"teravolta-backend/utils"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	FullName string    `gorm:"not null" json:"fullName"`
	Phone    string    `json:"phone"`
	Company  string    `json:"company"`

	Role string `gorm:"type:varchar(20);not null;default:'customer'" json:"role"` // customer, admin, super_admin, technician

	EmailNotifications bool `gorm:"default:true" json:"emailNotifications"`
	SMSNotifications   bool `gorm:"default:false" json:"smsNotifications"`

	LastLogin *time.Time `json:"lastLogin"`
	IsActive  bool       `gorm:"default:true" json:"isActive"`

	gorm.Model `json:"-"`
}

// Initialize UUID and hash the password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}
