// services/outbox_service.go
package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"teravolta-backend/models"
)

const outboxMaxAttempts = 5
const outboxBatchSize = 50

// EmailPayload is the outbox payload for kind "email".
type EmailPayload struct {
	To              string     `json:"to"`
	Subject         string     `json:"subject"`
	Body            string     `json:"body"`
	UserID          *uuid.UUID `json:"userId,omitempty"`
	PreferenceCheck bool       `json:"preferenceCheck"`
}

// SMSPayload is the outbox payload for kind "sms".
type SMSPayload struct {
	To       string `json:"to"`
	Body     string `json:"body"`
	WhatsApp bool   `json:"whatsapp"`
}

// NotificationPayload is the outbox payload for kind "notification".
type NotificationPayload struct {
	UserID uuid.UUID `json:"userId"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	Kind   string    `json:"kind"`
}

func enqueue(tx *gorm.DB, kind string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := models.OutboxMessage{
		Kind:    kind,
		Payload: datatypes.JSON(raw),
		Status:  models.OutboxStatusPending,
	}
	return tx.Create(&msg).Error
}

// EnqueueEmail records an email side effect in the caller's transaction.
func EnqueueEmail(tx *gorm.DB, p EmailPayload) error {
	return enqueue(tx, models.OutboxKindEmail, p)
}

// EnqueueSMS records an SMS/WhatsApp side effect in the caller's transaction.
func EnqueueSMS(tx *gorm.DB, p SMSPayload) error {
	return enqueue(tx, models.OutboxKindSMS, p)
}

// EnqueueNotification records an in-app notification in the caller's transaction.
func EnqueueNotification(tx *gorm.DB, p NotificationPayload) error {
	return enqueue(tx, models.OutboxKindNotification, p)
}

// OutboxDispatcher delivers pending outbox messages with retries.
type OutboxDispatcher struct {
	db       *gorm.DB
	email    *EmailService
	notifier *NotificationService
}

func NewOutboxDispatcher(db *gorm.DB, email *EmailService, notifier *NotificationService) *OutboxDispatcher {
	return &OutboxDispatcher{db: db, email: email, notifier: notifier}
}

// StartScheduler runs the dispatcher every minute.
func (d *OutboxDispatcher) StartScheduler() {
	c := cron.New()

	c.AddFunc("* * * * *", func() {
		d.DispatchPending()
	})

	c.Start()
	log.Println("Outbox dispatcher started")
}

// DispatchPending attempts delivery of a batch of pending messages. A message
// that keeps failing is marked failed after outboxMaxAttempts tries.
func (d *OutboxDispatcher) DispatchPending() {
	var messages []models.OutboxMessage
	if err := d.db.Where("status = ?", models.OutboxStatusPending).
		Order("created_at asc").
		Limit(outboxBatchSize).
		Find(&messages).Error; err != nil {
		log.Printf("Outbox: failed to fetch pending messages: %v", err)
		return
	}

	for i := range messages {
		d.deliver(&messages[i])
	}
}

func (d *OutboxDispatcher) deliver(msg *models.OutboxMessage) {
	err := d.attempt(msg)

	updates := map[string]interface{}{
		"attempts": msg.Attempts + 1,
	}
	if err != nil {
		updates["last_error"] = err.Error()
		if msg.Attempts+1 >= outboxMaxAttempts {
			updates["status"] = models.OutboxStatusFailed
			log.Printf("Outbox: message %s permanently failed: %v", msg.ID, err)
		} else {
			log.Printf("Outbox: message %s attempt %d failed: %v", msg.ID, msg.Attempts+1, err)
		}
	} else {
		now := time.Now()
		updates["status"] = models.OutboxStatusSent
		updates["sent_at"] = &now
		updates["last_error"] = ""
	}

	if dbErr := d.db.Model(&models.OutboxMessage{}).Where("id = ?", msg.ID).
		Updates(updates).Error; dbErr != nil {
		log.Printf("Outbox: failed to update message %s: %v", msg.ID, dbErr)
	}
}

func (d *OutboxDispatcher) attempt(msg *models.OutboxMessage) error {
	switch msg.Kind {
	case models.OutboxKindEmail:
		var p EmailPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		if p.PreferenceCheck {
			return d.email.SendWithPreferenceCheck(d.db, p)
		}
		return d.email.Send(p.To, p.Subject, p.Body)
	case models.OutboxKindSMS:
		var p SMSPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return d.notifier.SendMessage(p.To, p.Body, p.WhatsApp)
	case models.OutboxKindNotification:
		var p NotificationPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return d.notifier.Create(d.db, p.UserID, p.Title, p.Body, p.Kind)
	}
	log.Printf("Outbox: dropping message %s with unknown kind %q", msg.ID, msg.Kind)
	return nil
}
