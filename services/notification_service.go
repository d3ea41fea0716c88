// services/notification_service.go
package services

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"

	"teravolta-backend/models"
)

// NotificationService creates in-app notifications and sends SMS/WhatsApp
// messages through Twilio.
type NotificationService struct {
	client *twilio.RestClient
}

func NewNotificationService() *NotificationService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &NotificationService{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

// Create inserts an in-app notification row for the user.
func (s *NotificationService) Create(db *gorm.DB, userID uuid.UUID, title, body, kind string) error {
	notification := models.Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
		Kind:   kind,
	}
	return db.Create(&notification).Error
}

// SendMessage sends an SMS, or a WhatsApp message when requested.
func (s *NotificationService) SendMessage(to, body string, whatsapp bool) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetBody(body)

	if whatsapp {
		params.SetTo("whatsapp:" + to)
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetTo(to)
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio: %w", err)
	}
	if resp.Sid != nil {
		log.Printf("Message sent to %s, SID: %s", to, *resp.Sid)
	} else {
		log.Printf("Message sent to %s, but no SID returned", to)
	}
	return nil
}
