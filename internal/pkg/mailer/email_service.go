package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendReconnectNotice(toEmail, sourceTag string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	clientURL   string
}

func NewEmailService(host string, port int, username, password, senderEmail, clientURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		clientURL:   clientURL,
	}
}

// SendReconnectNotice tells the owner a platform rejected their stored
// credential and syncing is paused until they reconnect.
func (s *emailService) SendReconnectNotice(toEmail, sourceTag string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Action needed: reconnect your %s account", sourceTag))

	reconnectLink := fmt.Sprintf("%s/connections?source=%s", s.clientURL, sourceTag)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your %s connection needs attention</h2>
			<p>We could no longer access your saved content because the platform rejected our access. Syncing is paused.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Reconnect %s</a>
			<p>Or copy this link:</p>
			<p>%s</p>
			<p>If you disconnected on purpose, you can ignore this email.</p>
		</div>
	`, sourceTag, reconnectLink, sourceTag, reconnectLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send reconnect notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Reconnect notice sent to %s\n", toEmail)
	return nil
}
