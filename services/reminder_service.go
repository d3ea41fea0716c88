// services/reminder_service.go
package services

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"teravolta-backend/models"
	"teravolta-backend/utils"
)

// ReminderService messages each technician their next-day appointment list.
type ReminderService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewReminderService(db *gorm.DB, notifier *NotificationService) *ReminderService {
	return &ReminderService{db: db, notifier: notifier}
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	c.AddFunc("0 9 * * *", func() {
		s.SendDailyReminders()
	})

	c.Start()
	log.Println("Reminder scheduler started")
}

func (s *ReminderService) SendDailyReminders() {
	log.Println("Starting daily reminder processing...")

	tomorrow := utils.BeginningOfDay(time.Now().AddDate(0, 0, 1))
	dayAfter := tomorrow.AddDate(0, 0, 1)

	var technicians []models.Technician
	if err := s.db.Find(&technicians, "active = ?", true).Error; err != nil {
		log.Printf("Failed to fetch technicians: %v", err)
		return
	}

	for _, tech := range technicians {
		s.remindTechnician(tech, tomorrow, dayAfter)
	}

	log.Println("Daily reminder processing completed")
}

func (s *ReminderService) remindTechnician(tech models.Technician, from, to time.Time) {
	var appointments []models.Appointment
	if err := s.db.Where("technician_id = ? AND status = ? AND date >= ? AND date < ?",
		tech.ID, models.AppointmentStatusScheduled, from, to).
		Order("date asc").Find(&appointments).Error; err != nil {
		log.Printf("Technician %s: failed to fetch appointments: %v", tech.ID, err)
		return
	}
	if len(appointments) == 0 {
		return
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", tech.UserID).Error; err != nil {
		log.Printf("Technician %s: failed to fetch user: %v", tech.ID, err)
		return
	}
	if user.Phone == "" || !user.SMSNotifications {
		return
	}

	body := fmt.Sprintf("TeraVolta: tiene %d visita(s) mañana.", len(appointments))
	for _, a := range appointments {
		body += fmt.Sprintf("\n- %s %s, %s", a.TimeSlot, a.ClientName, a.ClientAddress)
	}

	if err := s.notifier.SendMessage(user.Phone, body, false); err != nil {
		log.Printf("Technician %s: reminder failed: %v", tech.ID, err)
	}
}
