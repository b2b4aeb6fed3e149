// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/taqyim/valuation-backend/internal/config"
	"github.com/taqyim/valuation-backend/internal/models"
)

// NotificationService sends email notifications. The in-platform channel is
// the conversation log, written transactionally by the lifecycle services;
// email here is best-effort and always called from a goroutine.
type NotificationService struct {
	config *config.Config
}

type emailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{config: cfg}
}

func (s *NotificationService) SendValuationCompletedEmail(client *models.User, request *models.ValuationRequest) {
	if request.Value == nil {
		return
	}
	s.send(client.Email, "valuation_completed", map[string]interface{}{
		"Name":  client.Name,
		"Title": request.Title,
		"Value": fmt.Sprintf("%.2f", *request.Value),
	})
}

func (s *NotificationService) SendValuationRejectedEmail(client *models.User, request *models.ValuationRequest, reason string) {
	s.send(client.Email, "valuation_rejected", map[string]interface{}{
		"Name":   client.Name,
		"Title":  request.Title,
		"Reason": reason,
	})
}

func (s *NotificationService) SendNewRequestEmail(company *models.User, request *models.ValuationRequest) {
	s.send(company.Email, "new_request", map[string]interface{}{
		"Name":  company.Name,
		"Title": request.Title,
	})
}

func (s *NotificationService) send(to, templateName string, data map[string]interface{}) {
	if s.config.Email.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{"to": to, "template": templateName}).Debug("email disabled, skipping")
		return
	}

	tmpl := s.getEmailTemplate(templateName)
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).WithField("template", templateName).Error("failed to render email template")
		return
	}
	if err := s.sendEmail(to, tmpl.Subject, body); err != nil {
		logrus.WithError(err).WithField("to", to).Error("failed to send email")
	}
}

func (s *NotificationService) getEmailTemplate(name string) emailTemplate {
	switch name {
	case "valuation_completed":
		return emailTemplate{
			Subject: "Your valuation is ready",
			Body:    `<p>Hello {{.Name}},</p><p>The valuation for <strong>{{.Title}}</strong> is ready: {{.Value}}.</p><p>Log in to accept or decline it.</p>`,
		}
	case "valuation_rejected":
		return emailTemplate{
			Subject: "Your valuation request was rejected",
			Body:    `<p>Hello {{.Name}},</p><p>Your request <strong>{{.Title}}</strong> was rejected: {{.Reason}}</p><p>You can transfer the request to another company.</p>`,
		}
	case "new_request":
		return emailTemplate{
			Subject: "New valuation request",
			Body:    `<p>Hello {{.Name}},</p><p>You have a new valuation request: <strong>{{.Title}}</strong>.</p>`,
		}
	default:
		return emailTemplate{
			Subject: "Notification",
			Body:    `<p>Hello {{.Name}},</p><p>You have a new notification.</p>`,
		}
	}
}

func (s *NotificationService) renderTemplate(body string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(body)
	if err != nil {
		return "", fmt.Errorf("failed to parse email template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return buf.String(), nil
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.config.Email.SMTPUser, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.config.Email.SMTPHost, s.config.Email.SMTPPort)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.Email.FromAddress, to, subject, body)

	return smtp.SendMail(addr, auth, s.config.Email.FromAddress, []string{to}, []byte(msg))
}
