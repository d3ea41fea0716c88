package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"teravolta-backend/config"
	"teravolta-backend/controllers"
	"teravolta-backend/models"
	"teravolta-backend/routes"
	"teravolta-backend/utils"
)

func setupTestEnv(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Inquiry{},
		&models.InquiryAttachment{},
		&models.Quote{},
		&models.Phase{},
		&models.ActiveProject{},
		&models.TimelineEntry{},
		&models.ProjectDocument{},
		&models.Technician{},
		&models.Leave{},
		&models.Appointment{},
		&models.Notification{},
		&models.OutboxMessage{},
		&models.Service{},
	))
	config.DB = db

	return routes.SetupRouter()
}

func createUser(t *testing.T, role string) models.User {
	t.Helper()
	user := models.User{
		Email:    role + "@teravolta.energy",
		Password: "secret-pass",
		FullName: "Test " + role,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, config.DB.Create(&user).Error)
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID.String(), user.Role)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, router, http.MethodPost, path, "", payload)
}

func TestContactFormIntake(t *testing.T) {
	router := setupTestEnv(t)

	payload := gin.H{
		"fullName": "María Castillo",
		"email":    "maria@example.com",
		"phone":    "+507 6123-4567",
		"service":  "solar",
		"message":  "Quisiera una evaluación para paneles solares.",
		"attachments": []gin.H{
			{"fileName": "factura-luz.pdf", "url": "https://files/1", "contentType": "application/pdf", "sizeBytes": 120000},
			{"fileName": "plano-techo.pdf", "url": "https://files/2", "contentType": "application/pdf", "sizeBytes": 340000},
		},
	}

	w := postJSON(t, router, "/public/contact", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var inquiry models.Inquiry
	require.NoError(t, config.DB.Preload("Attachments").
		First(&inquiry, "email = ?", "maria@example.com").Error)
	assert.Equal(t, models.InquiryStatusNew, inquiry.Status)
	assert.Len(t, inquiry.Attachments, 2)
	assert.Equal(t, "Panamá", inquiry.Country)
}

func TestContactFormRejectsBadAttachments(t *testing.T) {
	router := setupTestEnv(t)

	w := postJSON(t, router, "/public/contact", gin.H{
		"fullName": "María Castillo",
		"email":    "maria@example.com",
		"message":  "Adjunto ejecutable.",
		"attachments": []gin.H{
			{"fileName": "setup.exe", "url": "https://files/x", "contentType": "application/x-msdownload", "sizeBytes": 1},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	config.DB.Model(&models.Inquiry{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestContactFormRejectsBadPhone(t *testing.T) {
	router := setupTestEnv(t)

	w := postJSON(t, router, "/public/contact", gin.H{
		"fullName": "María Castillo",
		"email":    "maria@example.com",
		"phone":    "not-a-phone",
		"message":  "Hola",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFindRelatedInquiries(t *testing.T) {
	setupTestEnv(t)

	mk := func(name, email, phone string) models.Inquiry {
		inquiry := models.Inquiry{
			FullName: name,
			Email:    email,
			Phone:    phone,
			Message:  "hola",
			Status:   models.InquiryStatusNew,
		}
		require.NoError(t, config.DB.Create(&inquiry).Error)
		return inquiry
	}

	a := mk("A", "x@example.com", "+50761111111")
	b := mk("B", "x@example.com", "+50762222222") // same email as A
	cc := mk("C", "w@example.com", "+50761111111") // same phone as A
	mk("D", "w@example.com", "+50763333333")       // unrelated to A

	related, err := controllers.FindRelatedInquiries(config.DB, &a)
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, r := range related {
		ids[r.ID.String()] = true
	}
	assert.Len(t, related, 2)
	assert.True(t, ids[b.ID.String()])
	assert.True(t, ids[cc.ID.String()])
	assert.False(t, ids[a.ID.String()], "must exclude the record itself")
}

func TestPublicQuoteIntakeNotifiesAdmins(t *testing.T) {
	router := setupTestEnv(t)
	createUser(t, models.RoleAdmin)

	w := postJSON(t, router, "/public/quotes", gin.H{
		"clientName":  "Pedro Díaz",
		"clientEmail": "pedro@example.com",
		"service":     "consulting",
		"amount":      1000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var quote models.Quote
	require.NoError(t, config.DB.First(&quote, "client_email = ?", "pedro@example.com").Error)
	assert.Equal(t, models.QuoteStatusPendingReview, quote.Status)

	var pending int64
	config.DB.Model(&models.OutboxMessage{}).
		Where("kind = ? AND status = ?", models.OutboxKindNotification, models.OutboxStatusPending).
		Count(&pending)
	assert.EqualValues(t, 1, pending)
}

func TestProjectRoutesRejectTechnicians(t *testing.T) {
	router := setupTestEnv(t)

	owner := createUser(t, models.RoleCustomer)
	project := models.ActiveProject{
		QuoteID:     uuid.New(),
		UserID:      &owner.ID,
		ClientName:  owner.FullName,
		ClientEmail: owner.Email,
		Service:     "solar",
		Status:      models.ProjectStatusPendingPayment,
		Progress:    10,
	}
	require.NoError(t, config.DB.Create(&project).Error)

	techToken := tokenFor(t, createUser(t, models.RoleTechnician))
	for _, path := range []string{"confirm-payment", "submit-documents", "schedule"} {
		w := doJSON(t, router, http.MethodPost,
			"/api/projects/"+project.ID.String()+"/"+path, techToken, gin.H{})
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}

	// The owner still passes the guard.
	ownerToken := tokenFor(t, owner)
	w := doJSON(t, router, http.MethodPost,
		"/api/projects/"+project.ID.String()+"/confirm-payment", ownerToken, gin.H{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded models.ActiveProject
	require.NoError(t, config.DB.First(&reloaded, "id = ?", project.ID).Error)
	assert.Equal(t, models.ProjectStatusPendingDocuments, reloaded.Status)
}

func TestOnlyAdminsCancelAppointments(t *testing.T) {
	router := setupTestEnv(t)

	techUser := createUser(t, models.RoleTechnician)
	tech := models.Technician{UserID: techUser.ID}
	require.NoError(t, config.DB.Create(&tech).Error)

	appt := models.Appointment{
		TechnicianID:  tech.ID,
		ClientName:    "Pedro Díaz",
		ClientAddress: "Calle 50, Panamá",
		Service:       "solar",
		Date:          time.Now().Add(48 * time.Hour),
		Status:        models.AppointmentStatusScheduled,
	}
	require.NoError(t, config.DB.Create(&appt).Error)

	path := "/api/appointments/" + appt.ID.String() + "/status"

	w := doJSON(t, router, http.MethodPost, path, tokenFor(t, techUser),
		gin.H{"status": models.AppointmentStatusCancelled})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var reloaded models.Appointment
	require.NoError(t, config.DB.First(&reloaded, "id = ?", appt.ID).Error)
	assert.Equal(t, models.AppointmentStatusScheduled, reloaded.Status)

	adminToken := tokenFor(t, createUser(t, models.RoleAdmin))
	w = doJSON(t, router, http.MethodPost, path, adminToken,
		gin.H{"status": models.AppointmentStatusCancelled})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, config.DB.First(&reloaded, "id = ?", appt.ID).Error)
	assert.Equal(t, models.AppointmentStatusCancelled, reloaded.Status)
}
