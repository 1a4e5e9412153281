package mail

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Mailer delivers outbound account mail. Delivery is best effort; callers
// must not fail their own operation when a send fails.
type Mailer interface {
	SendPasswordReset(to, link string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	host     string
	port     int
	sender   string
	password string
}

func NewSMTPMailer(host string, port int, sender, password string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		sender:   sender,
		password: password,
	}
}

func (m *SMTPMailer) SendPasswordReset(to, link string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password Reset Request")
	msg.SetBody("text/plain", fmt.Sprintf(`To reset your password, click the following link:
%s

If you did not make this request, you can ignore this email!
Dev-Answer team.
Have a great day
`, link))

	d := gomail.NewDialer(m.host, m.port, m.sender, m.password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// LogMailer is used when no SMTP relay is configured. It writes the reset
// link to the log so local instances still have a working reset flow.
type LogMailer struct {
	logger *logrus.Logger
}

func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(to, link string) error {
	m.logger.Infof("password reset for %s: %s", to, link)
	return nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)
