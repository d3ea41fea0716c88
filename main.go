package main

import (
	"fmt"
	"log"
	"os"

	"teravolta-backend/config"
	"teravolta-backend/models"
	"teravolta-backend/routes"
	"teravolta-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Inquiry{},
		&models.InquiryAttachment{},
		&models.Quote{},
		&models.Phase{},
		&models.ActiveProject{},
		&models.TimelineEntry{},
		&models.ProjectDocument{},
		&models.Appointment{},
		&models.Technician{},
		&models.Leave{},
		&models.Notification{},
		&models.OutboxMessage{},
		&models.Service{},
	)
}

func main() {
	notifier := services.NewNotificationService()
	email := services.NewEmailService()

	dispatcher := services.NewOutboxDispatcher(config.DB, email, notifier)
	dispatcher.StartScheduler()

	reminders := services.NewReminderService(config.DB, notifier)
	reminders.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
