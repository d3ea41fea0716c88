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

const maxContactAttachments = 5

// ContactAttachmentInput is uploaded file metadata from the public form.
type ContactAttachmentInput struct {
	FileName    string `json:"fileName" binding:"required"`
	URL         string `json:"url" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	SizeBytes   int64  `json:"sizeBytes" binding:"min=0"`
}

// CreateInquiryInput defines the public contact form payload
type CreateInquiryInput struct {
	FullName    string                   `json:"fullName" binding:"required"`
	Email       string                   `json:"email" binding:"required,email"`
	Phone       string                   `json:"phone"`
	Service     string                   `json:"service"`
	Message     string                   `json:"message" binding:"required"`
	Attachments []ContactAttachmentInput `json:"attachments"`
}

// UpdateInquiryStatusInput moves an inquiry along its workflow
type UpdateInquiryStatusInput struct {
	Status string `json:"status" binding:"required,oneof=in_process completed closed"`
}

// CreateInquiry handles a public contact-form submission. No auth.
func CreateInquiry(c *gin.Context) {
	var input CreateInquiryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	if len(input.Attachments) > maxContactAttachments {
		utils.RespondWithError(c, http.StatusBadRequest, "Too many attachments")
		return
	}
	for _, a := range input.Attachments {
		if !utils.ValidAttachmentType(a.ContentType) {
			utils.RespondWithError(c, http.StatusBadRequest,
				"Attachment type not allowed: "+a.ContentType)
			return
		}
	}

	inquiry := models.Inquiry{
		FullName: input.FullName,
		Email:    input.Email,
		Phone:    input.Phone,
		Service:  input.Service,
		Message:  input.Message,
		Status:   models.InquiryStatusNew,
	}
	if country, ok := utils.CountryForPhone(input.Phone); ok {
		inquiry.Country = country
	}
	for _, a := range input.Attachments {
		inquiry.Attachments = append(inquiry.Attachments, models.InquiryAttachment{
			FileName:    a.FileName,
			URL:         a.URL,
			ContentType: a.ContentType,
			SizeBytes:   a.SizeBytes,
		})
	}

	if err := config.DB.Create(&inquiry).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create inquiry")
		return
	}

	c.JSON(http.StatusCreated, inquiry)
}

// GetInquiries retrieves all inquiries, optionally filtered by status
func GetInquiries(c *gin.Context) {
	query := config.DB.Preload("Attachments").Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var inquiries []models.Inquiry
	if err := query.Find(&inquiries).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve inquiries")
		return
	}

	c.JSON(http.StatusOK, inquiries)
}

// GetInquiry retrieves one inquiry plus any others sharing its email or
// phone, deduplicated and excluding the record itself.
func GetInquiry(c *gin.Context) {
	inquiryUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid inquiry ID format")
		return
	}

	var inquiry models.Inquiry
	if err := config.DB.Preload("Attachments").First(&inquiry, "id = ?", inquiryUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Inquiry not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	related, err := FindRelatedInquiries(config.DB, &inquiry)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"inquiry":                inquiry,
		"relatedInquiries":       related,
		"hasPotentialDuplicates": len(related) > 0,
	})
}

// FindRelatedInquiries returns other inquiries sharing the email or phone of
// the given one. A single OR'd query keeps the result deduplicated.
func FindRelatedInquiries(db *gorm.DB, inquiry *models.Inquiry) ([]models.Inquiry, error) {
	query := db.Where("id <> ?", inquiry.ID)
	if inquiry.Phone != "" {
		query = query.Where("email = ? OR phone = ?", inquiry.Email, inquiry.Phone)
	} else {
		query = query.Where("email = ?", inquiry.Email)
	}

	var related []models.Inquiry
	if err := query.Order("created_at desc").Find(&related).Error; err != nil {
		return nil, err
	}
	return related, nil
}

// UpdateInquiryStatus moves an inquiry along its workflow
func UpdateInquiryStatus(c *gin.Context) {
	inquiryUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid inquiry ID format")
		return
	}

	var input UpdateInquiryStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var inquiry models.Inquiry
	if err := config.DB.First(&inquiry, "id = ?", inquiryUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Inquiry not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !services.CanTransition(services.InquiryTransitions, inquiry.Status, input.Status) {
		utils.RespondWithError(c, http.StatusConflict, "Status transition not allowed")
		return
	}

	res := config.DB.Model(&models.Inquiry{}).
		Where("id = ? AND status = ?", inquiryUUID, inquiry.Status).
		Update("status", input.Status)
	if res.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update inquiry")
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusConflict, "Status transition not allowed")
		return
	}

	inquiry.Status = input.Status
	c.JSON(http.StatusOK, inquiry)
}

// DeleteInquiry hard-deletes an inquiry and its attachments
func DeleteInquiry(c *gin.Context) {
	inquiryUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid inquiry ID format")
		return
	}

	result := config.DB.Unscoped().Where("id = ?", inquiryUUID).Delete(&models.Inquiry{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete inquiry")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Inquiry not found")
		return
	}
	config.DB.Where("inquiry_id = ?", inquiryUUID).Delete(&models.InquiryAttachment{})

	c.JSON(http.StatusOK, gin.H{"message": "Inquiry deleted successfully"})
}
