package mailer

import (
	"fmt"
	"html"

	"carematch-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendMatchRequestReceived(toEmail, familyName string) error
	SendMatchRequestAnswered(toEmail, caregiverName string, accepted bool) error
	SendPaymentReceived(toEmail, amount, currency string) error
}

type emailService struct {
	dialer     *gomail.Dialer
	sender     string
	senderName string
	appURL     string
	logger     logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderName, appURL string, logger logger.ILogger) IEmailService {
	return &emailService{
		dialer:     gomail.NewDialer(host, port, username, password),
		sender:     username,
		senderName: senderName,
		appURL:     appURL,
		logger:     logger,
	}
}

func (s *emailService) send(toEmail, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.sender, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "Failed to send email", map[string]interface{}{
			"to":      toEmail,
			"subject": subject,
			"error":   err,
		})
		return err
	}

	s.logger.Info("MAILER", "Email sent", map[string]interface{}{"to": toEmail, "subject": subject})
	return nil
}

func (s *emailService) SendMatchRequestReceived(toEmail, familyName string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>New care request</h2>
			<p>%s would like to work with you.</p>
			<p><a href="%s/match-requests">Review the request</a></p>
		</div>
	`, html.EscapeString(familyName), s.appURL)
	return s.send(toEmail, "You have a new care request", body)
}

func (s *emailService) SendMatchRequestAnswered(toEmail, caregiverName string, accepted bool) error {
	verdict := "declined"
	if accepted {
		verdict = "accepted"
	}
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your request was %s</h2>
			<p>%s has %s your care request.</p>
			<p><a href="%s/match-requests">Open CareMatch</a></p>
		</div>
	`, verdict, html.EscapeString(caregiverName), verdict, s.appURL)
	return s.send(toEmail, "Your care request was "+verdict, body)
}

func (s *emailService) SendPaymentReceived(toEmail, amount, currency string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Payment received</h2>
			<p>A payment of <strong>%s %s</strong> has been settled to your account.</p>
		</div>
	`, html.EscapeString(amount), html.EscapeString(currency))
	return s.send(toEmail, "Payment received", body)
}

// logOnlyEmailService stands in when SMTP is not configured.
type logOnlyEmailService struct {
	logger logger.ILogger
}

func NewLogOnlyEmailService(logger logger.ILogger) IEmailService {
	return &logOnlyEmailService{logger: logger}
}

func (s *logOnlyEmailService) record(kind, to string) error {
	s.logger.Info("MAILER", "SMTP not configured, email skipped", map[string]interface{}{"kind": kind, "to": to})
	return nil
}

func (s *logOnlyEmailService) SendMatchRequestReceived(toEmail, familyName string) error {
	return s.record("match_request_received", toEmail)
}

func (s *logOnlyEmailService) SendMatchRequestAnswered(toEmail, caregiverName string, accepted bool) error {
	return s.record("match_request_answered", toEmail)
}

func (s *logOnlyEmailService) SendPaymentReceived(toEmail, amount, currency string) error {
	return s.record("payment_received", toEmail)
}
