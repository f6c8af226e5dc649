// Package email provides the email client for sending sale alerts.
package email

import (
	"fmt"
	"log/slog"

	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/email/templates"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending alerts, allowing for mock implementations in tests.
type Service interface {
	SendSoldOutAlert(props templates.SoldOutProps) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	toEmail   string
}

// NewService returns a Resend-backed Service, or a LogService when apiKey or
// the recipient is empty.
func NewService(apiKey, fromEmail, toEmail string, logger *slog.Logger) Service {
	if apiKey == "" || toEmail == "" {
		logger.Info("Email alerts disabled, logging sold-out alerts only")
		return &LogService{logger: logger}
	}
	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		toEmail:   toEmail,
	}
}

// SendSoldOutAlert composes and sends the sold-out email.
func (c *ResendClient) SendSoldOutAlert(props templates.SoldOutProps) error {
	htmlContent, err := templates.GetSoldOutEmailContent(props)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Flash Sale <%s>", c.fromEmail),
		To:      []string{c.toEmail},
		Subject: templates.GetSoldOutSubject(props),
		Html:    htmlContent,
	}

	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send sold-out email via Resend: %w", err)
	}
	return nil
}

// LogService writes alerts to the log instead of sending them.
type LogService struct {
	logger *slog.Logger
}

func (s *LogService) SendSoldOutAlert(props templates.SoldOutProps) error {
	s.logger.Warn(templates.GetSoldOutSubject(props),
		"packageId", props.PackageID,
		"total", props.Total,
		"soldAt", props.SoldAt)
	return nil
}
