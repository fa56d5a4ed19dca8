package mail

import (
	"context"
	"fmt"
	"mime"
	"net"
	netmail "net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPSender sends through an authenticated SMTP relay such as Gmail with an app password.
type SMTPSender struct {
	addr     string
	host     string
	username string
	password string
	from     string
}

// NewSMTPSender constructs an SMTPSender.
func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	return &SMTPSender{
		addr:     net.JoinHostPort(host, port),
		host:     host,
		username: username,
		password: password,
		from:     from,
	}
}

// Send delivers msg. The returned id is the generated Message-ID header.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	envelopeFrom := s.username
	if addr, err := netmail.ParseAddress(s.from); err == nil {
		envelopeFrom = addr.Address
	}

	domain := "localhost"
	if at := strings.LastIndex(envelopeFrom, "@"); at >= 0 {
		domain = envelopeFrom[at+1:]
	}
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)

	body := buildMIME(s.from, msg, messageID, time.Now())
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	if err := smtp.SendMail(s.addr, auth, envelopeFrom, []string{msg.To}, body); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	return messageID, nil
}

func buildMIME(from string, msg Message, messageID string, date time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("Message-ID: " + messageID + "\r\n")
	b.WriteString("Date: " + date.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}
