package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"teravolta-backend/config"
	"teravolta-backend/models"
	"teravolta-backend/services"
	"teravolta-backend/utils"
)

type ScheduleProjectInput struct {
	Date     time.Time `json:"date" binding:"required"`
	TimeSlot string    `json:"timeSlot" binding:"required"`
}

type TransitionProjectInput struct {
	Status string `json:"status" binding:"required,oneof=active paused pending_client in_review completed"`
}

type AddDocumentInput struct {
	FileName    string `json:"fileName" binding:"required"`
	URL         string `json:"url" binding:"required"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes" binding:"min=0"`
}

func currentActor(c *gin.Context) string {
	if userID, exists := c.Get("userId"); exists {
		if s, ok := userID.(string); ok {
			return s
		}
	}
	return "system"
}

// projectForCaller loads a project and, for customers, enforces ownership.
func projectForCaller(c *gin.Context) (*models.ActiveProject, bool) {
	projectUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid project ID format")
		return nil, false
	}

	var project models.ActiveProject
	if err := config.DB.Preload("Timeline").Preload("Documents").
		First(&project, "id = ?", projectUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Project not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}

	role, _ := c.Get("role")
	if role == models.RoleCustomer {
		userID, _ := c.Get("userId")
		if project.UserID == nil || userID != project.UserID.String() {
			utils.RespondWithError(c, http.StatusForbidden, "Not your project")
			return nil, false
		}
	}
	return &project, true
}

// GetProjects lists projects: all of them for admins, own for customers
func GetProjects(c *gin.Context) {
	query := config.DB.Preload("Timeline").Order("created_at desc")

	role, _ := c.Get("role")
	if role == models.RoleCustomer {
		userID, _ := c.Get("userId")
		query = query.Where("user_id = ?", userID)
	} else if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var projects []models.ActiveProject
	if err := query.Find(&projects).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve projects")
		return
	}

	c.JSON(http.StatusOK, projects)
}

// GetProject retrieves one project with its timeline and documents
func GetProject(c *gin.Context) {
	project, ok := projectForCaller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, project)
}

// BeginPayment moves a project out of onboarding (admin)
func BeginPayment(c *gin.Context) {
	project, ok := projectForCaller(c)
	if !ok {
		return
	}

	updated, err := services.NewLifecycleService(config.DB).BeginPayment(project.ID, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ConfirmPayment advances the payment step
func ConfirmPayment(c *gin.Context) {
	project, ok := projectForCaller(c)
	if !ok {
		return
	}

	updated, err := services.NewLifecycleService(config.DB).ConfirmPayment(project.ID, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// SubmitDocuments advances the documents step
func SubmitDocuments(c *gin.Context) {
	project, ok := projectForCaller(c)
	if !ok {
		return
	}

	updated, err := services.NewLifecycleService(config.DB).SubmitDocuments(project.ID, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ScheduleProject attaches a visit slot and activates the project
func ScheduleProject(c *gin.Context) {
	project, ok := projectForCaller(c)
	if !ok {
		return
	}

	var input ScheduleProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Date.Before(utils.BeginningOfDay(time.Now())) {
		utils.RespondWithError(c, http.StatusBadRequest, "Date must be in the future")
		return
	}

	updated, err := services.NewLifecycleService(config.DB).
		ScheduleProject(project.ID, input.Date, input.TimeSlot, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// TransitionProject performs an admin status edge (pause, resume, ...)
func TransitionProject(c *gin.Context) {
	project, ok := projectForCaller(c)
	if !ok {
		return
	}

	var input TransitionProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	updated, err := services.NewLifecycleService(config.DB).
		TransitionProject(project.ID, input.Status, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// AddProjectDocument records uploaded document metadata on the project
func AddProjectDocument(c *gin.Context) {
	project, ok := projectForCaller(c)
	if !ok {
		return
	}

	var input AddDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	doc := models.ProjectDocument{
		ProjectID:   project.ID,
		FileName:    input.FileName,
		URL:         input.URL,
		ContentType: input.ContentType,
		SizeBytes:   input.SizeBytes,
		UploadedBy:  currentActor(c),
	}
	if err := config.DB.Create(&doc).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save document")
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// PayProjectPhase marks one of the originating quote's phases as paid
func PayProjectPhase(c *gin.Context) {
	project, ok := projectForCaller(c)
	if !ok {
		return
	}
	phaseUUID, err := uuid.Parse(c.Param("phaseId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phase ID format")
		return
	}

	if err := services.NewLifecycleService(config.DB).PayPhase(project.QuoteID, phaseUUID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Phase marked as paid"})
}
