package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"teravolta-backend/config"
	"teravolta-backend/models"
	"teravolta-backend/services"
	"teravolta-backend/utils"
)

// CreateQuoteInput is the public quote-request payload.
type CreateQuoteInput struct {
	ClientName  string  `json:"clientName" binding:"required"`
	ClientEmail string  `json:"clientEmail" binding:"required,email"`
	ClientPhone string  `json:"clientPhone"`
	Service     string  `json:"service" binding:"required"`
	Amount      float64 `json:"amount" binding:"min=0"`
	Language    string  `json:"language" binding:"omitempty,oneof=es en"`
}

type RejectQuoteInput struct {
	Reason string `json:"reason" binding:"required"`
}

type AddPhaseInput struct {
	Name   string  `json:"name" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// CreateQuote records a public quote request and alerts the admins.
func CreateQuote(c *gin.Context) {
	var input CreateQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.ClientPhone != "" && !utils.ValidatePhone(input.ClientPhone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	quote := models.Quote{
		ClientName:  input.ClientName,
		ClientEmail: input.ClientEmail,
		ClientPhone: input.ClientPhone,
		Service:     input.Service,
		Amount:      input.Amount,
		Status:      models.QuoteStatusPendingReview,
		Language:    input.Language,
	}
	if quote.Language == "" {
		quote.Language = "es"
	}

	// Link the quote to an existing account when the email matches one.
	var user models.User
	if err := config.DB.Where("email = ?", input.ClientEmail).First(&user).Error; err == nil {
		quote.UserID = &user.ID
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quote).Error; err != nil {
			return err
		}
		var admins []models.User
		if err := tx.Where("role IN ? AND is_active = ?",
			[]string{models.RoleAdmin, models.RoleSuperAdmin}, true).Find(&admins).Error; err != nil {
			return err
		}
		for _, admin := range admins {
			if err := services.EnqueueNotification(tx, services.NotificationPayload{
				UserID: admin.ID,
				Title:  "Nueva solicitud de cotización",
				Body:   quote.ClientName + " solicitó " + quote.Service,
				Kind:   "quote_submitted",
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create quote")
		return
	}

	c.JSON(http.StatusCreated, quote)
}

// GetQuotes lists quotes, optionally filtered by status
func GetQuotes(c *gin.Context) {
	query := config.DB.Preload("Phases").Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var quotes []models.Quote
	if err := query.Find(&quotes).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve quotes")
		return
	}

	c.JSON(http.StatusOK, quotes)
}

// GetQuote retrieves a specific quote with its phases
func GetQuote(c *gin.Context) {
	quoteUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var quote models.Quote
	if err := config.DB.Preload("Phases").First(&quote, "id = ?", quoteUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quote":          quote,
		"phasesBalanced": services.PhasesBalanced(quote.Phases, quote.Amount),
	})
}

func reviewerID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return uuid.Nil, false
	}
	return id, true
}

// ReviewQuote marks a quote as reviewed
func ReviewQuote(c *gin.Context) {
	quoteUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID format")
		return
	}
	reviewer, ok := reviewerID(c)
	if !ok {
		return
	}

	quote, err := services.NewLifecycleService(config.DB).ReviewQuote(quoteUUID, reviewer)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// ApproveQuote marks a reviewed quote as approved
func ApproveQuote(c *gin.Context) {
	quoteUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	quote, err := services.NewLifecycleService(config.DB).ApproveQuote(quoteUUID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// MarkQuotePaid marks an approved quote as paid
func MarkQuotePaid(c *gin.Context) {
	quoteUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	quote, err := services.NewLifecycleService(config.DB).MarkQuotePaid(quoteUUID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// RejectQuote rejects a quote with a required reason
func RejectQuote(c *gin.Context) {
	quoteUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID format")
		return
	}
	reviewer, ok := reviewerID(c)
	if !ok {
		return
	}

	var input RejectQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	quote, err := services.NewLifecycleService(config.DB).RejectQuote(quoteUUID, reviewer, input.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// CancelQuote cancels a non-terminal quote
func CancelQuote(c *gin.Context) {
	quoteUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	quote, err := services.NewLifecycleService(config.DB).CancelQuote(quoteUUID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// OnboardQuote sends the client a magic sign-in link and converts the quote
func OnboardQuote(c *gin.Context) {
	quoteUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	link, err := services.NewLifecycleService(config.DB).OnboardQuote(quoteUUID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Onboarding email queued", "magicLink": link})
}

// ConvertQuote creates an active project from the quote
func ConvertQuote(c *gin.Context) {
	quoteUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	actor := "admin"
	if email, exists := c.Get("userId"); exists {
		actor, _ = email.(string)
	}

	project, err := services.NewLifecycleService(config.DB).ConvertQuote(quoteUUID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// AddPhase appends a payment phase to a quote
func AddPhase(c *gin.Context) {
	quoteUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var input AddPhaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	phase, balanced, err := services.NewLifecycleService(config.DB).AddPhase(quoteUUID, input.Name, input.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"phase": phase, "phasesBalanced": balanced})
}

// DeletePhase removes a payment phase from a quote
func DeletePhase(c *gin.Context) {
	quoteUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID format")
		return
	}
	phaseUUID, err := uuid.Parse(c.Param("phaseId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phase ID format")
		return
	}

	balanced, err := services.NewLifecycleService(config.DB).DeletePhase(quoteUUID, phaseUUID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Phase deleted successfully", "phasesBalanced": balanced})
}
