package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"teravolta-backend/config"
	"teravolta-backend/models"
	"teravolta-backend/utils"
)

type DashboardOverview struct {
	NewInquiries        int64                  `json:"newInquiries"`
	QuotesPendingReview int64                  `json:"quotesPendingReview"`
	ActiveProjects      int64                  `json:"activeProjects"`
	TodaysAppointments  int64                  `json:"todaysAppointments"`
	RecentActivity      []models.TimelineEntry `json:"recentActivity"`
}

// GetDashboardOverview aggregates counters for the admin landing page
func GetDashboardOverview(c *gin.Context) {
	var overview DashboardOverview

	if err := config.DB.Model(&models.Inquiry{}).
		Where("status = ?", models.InquiryStatusNew).
		Count(&overview.NewInquiries).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	config.DB.Model(&models.Quote{}).
		Where("status = ?", models.QuoteStatusPendingReview).
		Count(&overview.QuotesPendingReview)

	config.DB.Model(&models.ActiveProject{}).
		Where("status = ?", models.ProjectStatusActive).
		Count(&overview.ActiveProjects)

	today := utils.BeginningOfDay(time.Now())
	tomorrow := today.AddDate(0, 0, 1)
	config.DB.Model(&models.Appointment{}).
		Where("date >= ? AND date < ? AND status <> ?",
			today, tomorrow, models.AppointmentStatusCancelled).
		Count(&overview.TodaysAppointments)

	config.DB.Order("created_at desc").Limit(10).Find(&overview.RecentActivity)

	c.JSON(http.StatusOK, overview)
}
