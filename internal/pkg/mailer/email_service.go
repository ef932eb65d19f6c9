package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendPaymentReceipt(toEmail, fullName, plan string, amount int64, currency string) error
	SendSubscriptionExpired(toEmail, fullName string) error
	SendTrialStarted(toEmail, fullName string, trialDays int) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) send(toEmail, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send %q to %s: %v\n", subject, toEmail, err)
		return err
	}
	return nil
}

func (s *emailService) SendPaymentReceipt(toEmail, fullName, plan string, amount int64, currency string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Payment received</h2>
			<p>Hi %s,</p>
			<p>Your payment of <strong>%d %s</strong> for the <strong>%s</strong> plan was confirmed.</p>
			<p>Your subscription is now active. Thank you!</p>
		</div>
	`, fullName, amount, currency, plan)
	return s.send(toEmail, "Payment confirmed", body)
}

func (s *emailService) SendSubscriptionExpired(toEmail, fullName string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Subscription expired</h2>
			<p>Hi %s,</p>
			<p>Your subscription has expired and your listings are no longer visible.</p>
			<p>Renew any time to restore visibility.</p>
		</div>
	`, fullName)
	return s.send(toEmail, "Your subscription expired", body)
}

func (s *emailService) SendTrialStarted(toEmail, fullName string, trialDays int) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your trial has started</h2>
			<p>Hi %s,</p>
			<p>Your free trial is active for the next <strong>%d days</strong>.</p>
			<p>Enjoy full visibility for your listings.</p>
		</div>
	`, fullName, trialDays)
	return s.send(toEmail, "Trial started", body)
}
