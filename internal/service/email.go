package service

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(host string, port int, username, password, from string) EmailService {
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *emailService) SendReservationReadyNotification(ctx context.Context, email, name, bookTitle string, expiresAt string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour reserved copy of '%s' is ready for collection.\n\nPlease collect it before %s or the reservation will expire and the copy will be released.\n\nBest regards,\nThe Library Team", name, bookTitle, expiresAt)
	return s.send(email, fmt.Sprintf("Your reserved book is ready: %s", bookTitle), body)
}

func (s *emailService) SendOverdueReminder(ctx context.Context, email, name, bookTitle string, dueDate string) error {
	body := fmt.Sprintf("Hello %s,\n\n'%s' was due on %s and is now overdue. Daily fines apply until it is returned, and further borrowing is blocked.\n\nBest regards,\nThe Library Team", name, bookTitle, dueDate)
	return s.send(email, fmt.Sprintf("Overdue book: %s", bookTitle), body)
}

func (s *emailService) SendFineIssuedNotification(ctx context.Context, email, name, bookTitle string, amountCents int32) error {
	body := fmt.Sprintf("Hello %s,\n\nA fine of %.2f was issued for the late return of '%s'. You can submit payment proof from your fines page.\n\nBest regards,\nThe Library Team", name, float64(amountCents)/100, bookTitle)
	return s.send(email, "Overdue fine issued", body)
}

func (s *emailService) SendPasswordReset(ctx context.Context, email, name, token string) error {
	body := fmt.Sprintf("Hello %s,\n\nA password reset was requested for your account. Use the following token to set a new password:\n\n%s\n\nThe token expires in 30 minutes. If you did not request this, you can ignore this email.\n\nBest regards,\nThe Library Team", name, token)
	return s.send(email, "Password reset request", body)
}
