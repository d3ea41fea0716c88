package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"teravolta-backend/config"
	"teravolta-backend/models"
	"teravolta-backend/utils"
)

type ReportController struct{}

type MonthlyReport struct {
	From                  time.Time `json:"from"`
	To                    time.Time `json:"to"`
	QuotesReceived        int64     `json:"quotesReceived"`
	QuotesConverted       int64     `json:"quotesConverted"`
	QuotesRejected        int64     `json:"quotesRejected"`
	ConversionRate        float64   `json:"conversionRate"`
	AppointmentsScheduled int64     `json:"appointmentsScheduled"`
	AppointmentsCompleted int64     `json:"appointmentsCompleted"`
	CompletionRate        float64   `json:"completionRate"`
}

// GetReportAnalytics returns conversion and completion aggregates for the
// current month, or for the month given as ?month=2026-08
func (rc ReportController) GetReportAnalytics(c *gin.Context) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if month := c.Query("month"); month != "" {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid month, expected YYYY-MM")
			return
		}
		from = parsed
	}
	to := from.AddDate(0, 1, 0)

	report := MonthlyReport{From: from, To: to}

	config.DB.Model(&models.Quote{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&report.QuotesReceived)
	config.DB.Model(&models.Quote{}).
		Where("created_at >= ? AND created_at < ? AND status = ?", from, to, models.QuoteStatusConverted).
		Count(&report.QuotesConverted)
	config.DB.Model(&models.Quote{}).
		Where("created_at >= ? AND created_at < ? AND status = ?", from, to, models.QuoteStatusRejected).
		Count(&report.QuotesRejected)

	config.DB.Model(&models.Appointment{}).
		Where("date >= ? AND date < ?", from, to).
		Count(&report.AppointmentsScheduled)
	config.DB.Model(&models.Appointment{}).
		Where("date >= ? AND date < ? AND status = ?", from, to, models.AppointmentStatusCompleted).
		Count(&report.AppointmentsCompleted)

	if report.QuotesReceived > 0 {
		report.ConversionRate = float64(report.QuotesConverted) / float64(report.QuotesReceived)
	}
	if report.AppointmentsScheduled > 0 {
		report.CompletionRate = float64(report.AppointmentsCompleted) / float64(report.AppointmentsScheduled)
	}

	c.JSON(http.StatusOK, report)
}
