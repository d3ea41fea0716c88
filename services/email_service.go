// services/email_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"gorm.io/gorm"

	"teravolta-backend/models"
)

// EmailService sends transactional email through the provider's HTTP API.
type EmailService struct {
	client *resty.Client
}

func NewEmailService() *EmailService {
	client := resty.New().
		SetBaseURL(os.Getenv("EMAIL_API_URL")).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(os.Getenv("EMAIL_API_KEY"))

	return &EmailService{client: client}
}

type emailRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type emailResponse struct {
	Error string `json:"error"`
}

func (s *EmailService) Send(to, subject, body string) error {
	from := os.Getenv("EMAIL_FROM")
	if from == "" {
		from = "no-reply@teravolta.energy"
	}

	var result emailResponse
	resp, err := s.client.R().
		SetBody(emailRequest{To: to, From: from, Subject: subject, Body: body}).
		SetResult(&result).
		SetError(&result).
		Post("/send")
	if err != nil {
		return err
	}
	if resp.IsError() {
		if result.Error != "" {
			return fmt.Errorf("email provider: %s", result.Error)
		}
		return fmt.Errorf("email provider: status %d", resp.StatusCode())
	}

	log.Printf("Email sent to %s: %s", to, subject)
	return nil
}

// SendWithPreferenceCheck sends the email unless the target user disabled
// email notifications. Payloads without a user id (anonymous leads) bypass
// the check.
func (s *EmailService) SendWithPreferenceCheck(db *gorm.DB, p EmailPayload) error {
	if p.UserID != nil {
		var user models.User
		if err := db.First(&user, "id = ?", *p.UserID).Error; err == nil {
			if !user.EmailNotifications {
				log.Printf("Email to %s skipped: user opted out", p.To)
				return nil
			}
		}
	}
	return s.Send(p.To, p.Subject, p.Body)
}

type emailTemplate struct {
	Subject string
	Body    string
}

// Localized templates. [ClientName], [Service] and [Reason] are replaced at
// render time; Spanish is the default for the markets the portal serves.
var rejectionTemplates = map[string]emailTemplate{
	"es": {
		Subject: "Actualización sobre su solicitud de cotización",
		Body: "Hola [ClientName],\n\nLamentamos informarle que su solicitud de [Service] " +
			"no pudo ser aprobada en esta ocasión.\n\nMotivo: [Reason]\n\n" +
			"Puede contactarnos para discutir alternativas.\n\nEquipo TeraVolta",
	},
	"en": {
		Subject: "Update on your quote request",
		Body: "Hello [ClientName],\n\nWe are sorry to inform you that your [Service] " +
			"request could not be approved at this time.\n\nReason: [Reason]\n\n" +
			"Feel free to contact us to discuss alternatives.\n\nTeam TeraVolta",
	},
}

var reviewedTemplates = map[string]emailTemplate{
	"es": {
		Subject: "Su cotización está en revisión",
		Body: "Hola [ClientName],\n\nSu solicitud de [Service] fue recibida y está " +
			"siendo revisada por nuestro equipo. Le contactaremos pronto.\n\nEquipo TeraVolta",
	},
	"en": {
		Subject: "Your quote is under review",
		Body: "Hello [ClientName],\n\nYour [Service] request was received and is being " +
			"reviewed by our team. We will contact you shortly.\n\nTeam TeraVolta",
	},
}

var onboardingTemplates = map[string]emailTemplate{
	"es": {
		Subject: "Bienvenido a TeraVolta — active su cuenta",
		Body: "Hola [ClientName],\n\n¡Su proyecto de [Service] fue aprobado! " +
			"Ingrese al portal con el siguiente enlace para completar su incorporación:\n\n" +
			"[MagicLink]\n\nEl enlace expira en 48 horas.\n\nEquipo TeraVolta",
	},
	"en": {
		Subject: "Welcome to TeraVolta — activate your account",
		Body: "Hello [ClientName],\n\nYour [Service] project was approved! " +
			"Use the link below to sign in and complete your onboarding:\n\n" +
			"[MagicLink]\n\nThe link expires in 48 hours.\n\nTeam TeraVolta",
	},
}

var reviewRequestTemplates = map[string]emailTemplate{
	"es": {
		Subject: "¿Cómo estuvo nuestra visita?",
		Body: "Hola [ClientName],\n\nNuestro técnico completó la visita programada. " +
			"Nos encantaría conocer su opinión sobre el servicio.\n\nEquipo TeraVolta",
	},
	"en": {
		Subject: "How was our visit?",
		Body: "Hello [ClientName],\n\nOur technician completed the scheduled visit. " +
			"We would love to hear your feedback on the service.\n\nTeam TeraVolta",
	},
}

func renderTemplate(templates map[string]emailTemplate, lang string, repl map[string]string) (string, string) {
	tpl, ok := templates[lang]
	if !ok {
		tpl = templates["es"]
	}
	subject, body := tpl.Subject, tpl.Body
	for placeholder, value := range repl {
		body = strings.ReplaceAll(body, placeholder, value)
		subject = strings.ReplaceAll(subject, placeholder, value)
	}
	return subject, body
}

// RejectionEmail renders the localized rejection template for a quote.
func RejectionEmail(quote *models.Quote, reason string) (subject, body string) {
	return renderTemplate(rejectionTemplates, quote.Language, map[string]string{
		"[ClientName]": quote.ClientName,
		"[Service]":    quote.Service,
		"[Reason]":     reason,
	})
}

// ReviewedEmail renders the informational template sent when a quote enters review.
func ReviewedEmail(quote *models.Quote) (subject, body string) {
	return renderTemplate(reviewedTemplates, quote.Language, map[string]string{
		"[ClientName]": quote.ClientName,
		"[Service]":    quote.Service,
	})
}

// OnboardingEmail renders the onboarding template with the magic link embedded.
func OnboardingEmail(quote *models.Quote, magicLink string) (subject, body string) {
	return renderTemplate(onboardingTemplates, quote.Language, map[string]string{
		"[ClientName]": quote.ClientName,
		"[Service]":    quote.Service,
		"[MagicLink]":  magicLink,
	})
}

// ReviewRequestEmail renders the post-visit review request.
func ReviewRequestEmail(clientName, lang string) (subject, body string) {
	return renderTemplate(reviewRequestTemplates, lang, map[string]string{
		"[ClientName]": clientName,
	})
}
