package email

import (
	"fmt"

	"meeplemart/internal/config"

	"gopkg.in/gomail.v2"
)

// Sender delivers transactional mail. Order confirmation and password reset
// are the only messages the storefront sends.
type Sender interface {
	Send(to, subject, body string) error
	SendOrderConfirmation(to, orderID string, totalCents int64) error
	SendPasswordReset(to, resetToken string) error
}

type smtpSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) Sender {
	return &smtpSender{cfg: cfg}
}

func (s *smtpSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)
	return d.DialAndSend(m)
}

func (s *smtpSender) SendOrderConfirmation(to, orderID string, totalCents int64) error {
	subject := "Your order is confirmed"
	body := fmt.Sprintf(
		"<p>Thanks for your order!</p><p>Order <b>%s</b> has been received. Total: $%.2f.</p>",
		orderID, float64(totalCents)/100)
	return s.Send(to, subject, body)
}

func (s *smtpSender) SendPasswordReset(to, resetToken string) error {
	subject := "Password reset request"
	body := fmt.Sprintf(
		"<p>A password reset was requested for your account.</p><p>Reset token: <code>%s</code></p><p>If this wasn't you, ignore this message.</p>",
		resetToken)
	return s.Send(to, subject, body)
}
