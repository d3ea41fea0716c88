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
	"teravolta-backend/utils"
)

type CreateTechnicianInput struct {
	UserID       uuid.UUID    `json:"userId" binding:"required"`
	Specialties  []string     `json:"specialties"`
	WorkingHours models.JSONB `json:"workingHours"`
}

type UpdateTechnicianInput struct {
	Specialties  *[]string     `json:"specialties"`
	WorkingHours *models.JSONB `json:"workingHours"`
	Active       *bool         `json:"active"`
}

type CreateLeaveInput struct {
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
	Type      string    `json:"type" binding:"required,oneof=vacation sick personal"`
	Reason    string    `json:"reason"`
}

type ResolveLeaveInput struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

func specialtiesJSON(specialties []string) (datatypes.JSON, error) {
	if specialties == nil {
		specialties = []string{}
	}
	raw, err := json.Marshal(specialties)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// CreateTechnician links a technician profile to a user with role technician
func CreateTechnician(c *gin.Context) {
	var input CreateTechnicianInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", input.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "User not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if user.Role != models.RoleTechnician {
		utils.RespondWithError(c, http.StatusBadRequest, "User does not have the technician role")
		return
	}

	var existing models.Technician
	if err := config.DB.First(&existing, "user_id = ?", input.UserID).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Technician profile already exists for this user")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	specialties, err := specialtiesJSON(input.Specialties)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to encode specialties")
		return
	}

	tech := models.Technician{
		UserID:       input.UserID,
		Specialties:  specialties,
		WorkingHours: input.WorkingHours,
		Active:       true,
	}
	if err := config.DB.Create(&tech).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create technician")
		return
	}

	c.JSON(http.StatusCreated, tech)
}

// GetTechnicians lists technician profiles
func GetTechnicians(c *gin.Context) {
	var technicians []models.Technician
	if err := config.DB.Find(&technicians).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve technicians")
		return
	}
	c.JSON(http.StatusOK, technicians)
}

// UpdateTechnician updates specialties, hours or active flag
func UpdateTechnician(c *gin.Context) {
	techUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid technician ID format")
		return
	}

	var input UpdateTechnicianInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var tech models.Technician
	if err := config.DB.First(&tech, "id = ?", techUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Technician not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Specialties != nil {
		specialties, err := specialtiesJSON(*input.Specialties)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to encode specialties")
			return
		}
		tech.Specialties = specialties
	}
	if input.WorkingHours != nil {
		tech.WorkingHours = *input.WorkingHours
	}
	if input.Active != nil {
		tech.Active = *input.Active
	}

	if err := config.DB.Save(&tech).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update technician")
		return
	}

	c.JSON(http.StatusOK, tech)
}

// CreateLeave files a leave request for the logged-in technician
func CreateLeave(c *gin.Context) {
	tech, ok := technicianForUser(c)
	if !ok {
		return
	}

	var input CreateLeaveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.EndDate.Before(input.StartDate) {
		utils.RespondWithError(c, http.StatusBadRequest, "End date before start date")
		return
	}

	leave := models.Leave{
		TechnicianID: tech.ID,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Type:         input.Type,
		Reason:       input.Reason,
		Status:       models.LeaveStatusPending,
	}
	if err := config.DB.Create(&leave).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create leave request")
		return
	}

	c.JSON(http.StatusCreated, leave)
}

// GetLeaves lists leave requests: own for technicians, all for admins
func GetLeaves(c *gin.Context) {
	query := config.DB.Order("start_date desc")

	role, _ := c.Get("role")
	if role == models.RoleTechnician {
		tech, ok := technicianForUser(c)
		if !ok {
			return
		}
		query = query.Where("technician_id = ?", tech.ID)
	} else if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var leaves []models.Leave
	if err := query.Find(&leaves).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve leaves")
		return
	}

	c.JSON(http.StatusOK, leaves)
}

// ResolveLeave approves or rejects a pending leave request (admin)
func ResolveLeave(c *gin.Context) {
	leaveUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid leave ID format")
		return
	}

	var input ResolveLeaveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	res := config.DB.Model(&models.Leave{}).
		Where("id = ? AND status = ?", leaveUUID, models.LeaveStatusPending).
		Update("status", input.Status)
	if res.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update leave")
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusConflict, "Leave not found or already resolved")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Leave " + input.Status})
}
