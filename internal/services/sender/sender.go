// Package services holds the notification sender. It turns upcoming payment
// messages into e-mails to the administrators.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sibintb/submanager/internal/csvio"
	"github.com/sibintb/submanager/internal/dashboard"
	"github.com/sibintb/submanager/internal/lib/sl"
	"github.com/sibintb/submanager/internal/lib/smtp"
	"github.com/sibintb/submanager/internal/models"
)

// UserRepository lists accounts.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// SenderService e-mails upcoming payments.
type SenderService struct {
	users     UserRepository
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService creates a SenderService.
func NewSenderService(users UserRepository, log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		users:     users,
		transport: transport,
		log:       log,
	}
}

// HandleUpcomingPayment is a rabbitmq.Handler. Undecodable messages are
// logged and dropped; delivery failures are returned so the message is
// requeued.
func (s *SenderService) HandleUpcomingPayment(ctx context.Context, body []byte) error {
	const op = "services.sender.HandleUpcomingPayment"

	var msg models.UpcomingPayment
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("dropping malformed message", sl.Err(err))
		return nil
	}

	to, err := s.recipients(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(to) == 0 {
		s.log.Warn("no admin with an e-mail address, skipping notification", slog.String("id", msg.SubscriptionID))
		return nil
	}

	if err := s.sendEmail(to, Subject(msg), Body(msg)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// recipients returns the e-mail addresses of every admin. The bootstrap
// "admin" identity is not an address and is skipped.
func (s *SenderService) recipients(ctx context.Context) ([]string, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	var to []string
	for _, u := range users {
		if u.IsAdmin() && strings.Contains(u.Email, "@") {
			to = append(to, u.Email)
		}
	}
	return to, nil
}

// Subject is the e-mail subject for msg.
func Subject(msg models.UpcomingPayment) string {
	return fmt.Sprintf("%s renews %s", msg.Name, dashboard.DueIn(msg.DaysLeft))
}

// Body is the plain text e-mail body for msg.
func Body(msg models.UpcomingPayment) string {
	return fmt.Sprintf("Hello,\n\nThe subscription %s will be charged %s %s on %s.\n\nThis is an automatic reminder from the subscription dashboard.",
		msg.Name, csvio.FormatPrice(msg.Price), msg.Currency, msg.NextPayment)
}


func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.From()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err := wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	if err := client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP session", sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.Any("to", to))
	return nil
}
