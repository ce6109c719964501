// Package mailer delivers one-time codes and admit cards over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned when SMTP credentials or the sender address are missing.
var ErrNotConfigured = errors.New("email credentials not configured")

// Sender is the notification channel used by the services.
type Sender interface {
	SendCode(ctx context.Context, to, code string) error
	SendDocument(ctx context.Context, to, name, rollNo string, pdf []byte) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// AppName is used in subjects and signatures.
	AppName string
	// CodeTTL is quoted in the OTP mail body.
	CodeTTL time.Duration
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTP sends multipart mail through a STARTTLS-capable relay.
type SMTP struct {
	cfg    Config
	dialer dialer
	log    *zap.Logger
}

func NewSMTP(cfg Config, log *zap.Logger) *SMTP {
	return &SMTP{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		log:    log.With(zap.String("component", "mailer")),
	}
}

func (s *SMTP) configured() bool {
	return s.cfg.From != "" && s.cfg.Username != "" && s.cfg.Password != ""
}

func (s *SMTP) SendCode(ctx context.Context, to, code string) error {
	minutes := int(s.cfg.CodeTTL / time.Minute)

	text := fmt.Sprintf(
		"Hi,\n\nYour One-Time Password (OTP) for %s is:\n\n%s\n\n"+
			"This OTP is valid for %d minutes.\n\n"+
			"If you didn't request this, please ignore this email.\n\nBest regards,\n%s\n",
		s.cfg.AppName, code, minutes, s.cfg.AppName)

	body := fmt.Sprintf(`<html><body>
<p>Hi,</p>
<p>Your One-Time Password (OTP) for %[1]s is:</p>
<h2 style="font-family: monospace; letter-spacing: 5px; color: #0066cc;">%[2]s</h2>
<p><strong>This OTP is valid for %[3]d minutes.</strong></p>
<p>If you didn't request this, please ignore this email.</p>
<p>Best regards,<br/>%[1]s</p>
</body></html>`, html.EscapeString(s.cfg.AppName), html.EscapeString(code), minutes)

	m := s.newMessage(to, s.cfg.AppName+" - Your OTP Code", text, body)

	if err := s.send(ctx, m); err != nil {
		s.log.Error("Failed to send OTP email", zap.Error(err), zap.String("to", to))
		return err
	}

	s.log.Info("OTP email sent", zap.String("to", to))
	return nil
}

func (s *SMTP) SendDocument(ctx context.Context, to, name, rollNo string, pdf []byte) error {
	text := fmt.Sprintf(
		"Dear %s,\n\nPlease find attached your admit card for %s.\n\n"+
			"Roll No: %s\n\nCarry a printed copy and a valid photo ID to the exam centre.\n\nBest regards,\n%s\n",
		name, s.cfg.AppName, rollNo, s.cfg.AppName)

	body := fmt.Sprintf(`<html><body>
<p>Dear %[1]s,</p>
<p>Please find attached your admit card for %[2]s.</p>
<p><strong>Roll No: %[3]s</strong></p>
<p>Carry a printed copy and a valid photo ID to the exam centre.</p>
<p>Best regards,<br/>%[2]s</p>
</body></html>`, html.EscapeString(name), html.EscapeString(s.cfg.AppName), html.EscapeString(rollNo))

	m := s.newMessage(to, fmt.Sprintf("%s - Admit Card (%s)", s.cfg.AppName, rollNo), text, body)
	m.Attach(AttachmentName(rollNo),
		gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(pdf)
			return err
		}),
	)

	if err := s.send(ctx, m); err != nil {
		s.log.Error("Failed to send admit card email",
			zap.Error(err), zap.String("to", to), zap.String("roll_no", rollNo))
		return err
	}

	s.log.Info("Admit card email sent", zap.String("to", to), zap.String("roll_no", rollNo))
	return nil
}

// AttachmentName is the file name used for an admit card download or attachment.
func AttachmentName(rollNo string) string {
	return fmt.Sprintf("admit_card_%s.pdf", rollNo)
}

func (s *SMTP) newMessage(to, subject, text, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", body)
	return m
}

// send dials once; failures are reported to the caller, never retried.
func (s *SMTP) send(ctx context.Context, m *gomail.Message) error {
	if !s.configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
