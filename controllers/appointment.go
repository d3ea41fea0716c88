package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"teravolta-backend/config"
	"teravolta-backend/models"
	"teravolta-backend/services"
	"teravolta-backend/utils"
)

type CreateAppointmentInput struct {
	ProjectID     *uuid.UUID `json:"projectId"`
	TechnicianID  uuid.UUID  `json:"technicianId" binding:"required"`
	ClientName    string     `json:"clientName" binding:"required"`
	ClientAddress string     `json:"clientAddress" binding:"required"`
	Service       string     `json:"service"`
	Date          time.Time  `json:"date" binding:"required"`
	TimeSlot      string     `json:"timeSlot"`
}

type AppointmentStatusInput struct {
	Status string `json:"status" binding:"required,oneof=on_route in_progress completed cancelled"`
}

type ReportIncidentInput struct {
	Reason  string `json:"reason" binding:"required"`
	Comment string `json:"comment"`
}

type AddPhotosInput struct {
	Photos []string `json:"photos" binding:"required,min=1"`
}

type UpdateNotesInput struct {
	Notes string `json:"notes" binding:"required"`
}

// technicianForUser resolves the technician profile of the logged-in user.
func technicianForUser(c *gin.Context) (*models.Technician, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return nil, false
	}

	var tech models.Technician
	if err := config.DB.First(&tech, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusForbidden, "No technician profile for this user")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &tech, true
}

// appointmentForTechnician loads an appointment and enforces that technicians
// only touch their own assignments. Admins pass through.
func appointmentForTechnician(c *gin.Context) (*models.Appointment, bool) {
	apptUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return nil, false
	}

	var appt models.Appointment
	if err := config.DB.First(&appt, "id = ?", apptUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}

	role, _ := c.Get("role")
	if role == models.RoleTechnician {
		tech, ok := technicianForUser(c)
		if !ok {
			return nil, false
		}
		if appt.TechnicianID != tech.ID {
			utils.RespondWithError(c, http.StatusForbidden, "Not your appointment")
			return nil, false
		}
	}
	return &appt, true
}

// CreateAppointment schedules a technician visit (admin)
func CreateAppointment(c *gin.Context) {
	var input CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var tech models.Technician
	if err := config.DB.First(&tech, "id = ? AND active = ?", input.TechnicianID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Technician not found or inactive")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	appt := models.Appointment{
		ProjectID:     input.ProjectID,
		TechnicianID:  input.TechnicianID,
		ClientName:    input.ClientName,
		ClientAddress: input.ClientAddress,
		Service:       input.Service,
		Date:          input.Date,
		TimeSlot:      input.TimeSlot,
		Status:        models.AppointmentStatusScheduled,
	}
	if err := config.DB.Create(&appt).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}

	c.JSON(http.StatusCreated, appt)
}

// GetAppointments lists appointments: own for technicians, all for admins
func GetAppointments(c *gin.Context) {
	query := config.DB.Order("date asc")

	role, _ := c.Get("role")
	if role == models.RoleTechnician {
		tech, ok := technicianForUser(c)
		if !ok {
			return
		}
		query = query.Where("technician_id = ?", tech.ID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// GetAppointment retrieves a single appointment
func GetAppointment(c *gin.Context) {
	appt, ok := appointmentForTechnician(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, appt)
}

// UpdateAppointmentStatus advances the visit state machine
func UpdateAppointmentStatus(c *gin.Context) {
	appt, ok := appointmentForTechnician(c)
	if !ok {
		return
	}

	var input AppointmentStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Cancellation is an admin decision; technicians report an incident instead.
	role, _ := c.Get("role")
	if input.Status == models.AppointmentStatusCancelled &&
		role != models.RoleAdmin && role != models.RoleSuperAdmin {
		utils.RespondWithError(c, http.StatusForbidden, "Only admins can cancel appointments")
		return
	}

	updated, err := services.NewLifecycleService(config.DB).AdvanceAppointment(appt.ID, input.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ReportIncident flags an appointment the technician cannot serve
func ReportIncident(c *gin.Context) {
	appt, ok := appointmentForTechnician(c)
	if !ok {
		return
	}

	var input ReportIncidentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	report, err := services.NewIncidentService(config.DB).
		ReportIncident(appt.ID, input.Reason, input.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// AddAppointmentPhotos appends photo URLs captured on site
func AddAppointmentPhotos(c *gin.Context) {
	appt, ok := appointmentForTechnician(c)
	if !ok {
		return
	}

	var input AddPhotosInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var photos []string
	if len(appt.Photos) > 0 {
		if err := json.Unmarshal(appt.Photos, &photos); err != nil {
			photos = nil
		}
	}
	photos = append(photos, input.Photos...)
	raw, err := json.Marshal(photos)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to encode photos")
		return
	}

	if err := config.DB.Model(&models.Appointment{}).Where("id = ?", appt.ID).
		Update("photos", datatypes.JSON(raw)).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save photos")
		return
	}

	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

// UpdateAppointmentNotes replaces the technician's field notes
func UpdateAppointmentNotes(c *gin.Context) {
	appt, ok := appointmentForTechnician(c)
	if !ok {
		return
	}

	var input UpdateNotesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if err := config.DB.Model(&models.Appointment{}).Where("id = ?", appt.ID).
		Update("notes", input.Notes).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save notes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notes updated"})
}
