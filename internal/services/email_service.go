package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email, username string) error
	SendPasswordResetEmail(email, token string) error
	SendInviteEmail(email, workspaceName, token string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

func (s *emailService) SendWelcomeEmail(email, username string) error {
	body := fmt.Sprintf(`
		<h2>Welcome to Taskly, %s!</h2>
		<p>Your account and your personal workspace are ready.</p>
	`, username)
	if err := s.send(email, "Welcome to Taskly!", body); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendPasswordResetEmail(email, token string) error {
	body := fmt.Sprintf(`
		<h3>Password reset requested</h3>
		<p>Use the following token to reset your password: <strong>%s</strong></p>
		<p>The token expires in one hour. If you did not request this change, ignore this email.</p>
	`, token)
	if err := s.send(email, "Password reset request", body); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

func (s *emailService) SendInviteEmail(email, workspaceName, token string) error {
	body := fmt.Sprintf(`
		<h3>You have been invited to the workspace "%s"</h3>
		<p>Use the following token to join: <strong>%s</strong></p>
	`, workspaceName, token)
	if err := s.send(email, "Workspace invitation", body); err != nil {
		return fmt.Errorf("failed to send invite email: %w", err)
	}
	return nil
}
