package mail

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

type Message struct {
	Recipients []string
	Subject    string
	HTML       string
}

// Sender queues a message for delivery. Sending is fire-and-forget: a
// delivery failure is logged, never surfaced to the request that caused it.
type Sender interface {
	Queue(msg Message)
}

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// SMTPMailer delivers messages from a single background worker so slow
// SMTP round trips never sit on the request path.
type SMTPMailer struct {
	cfg   Config
	log   *slog.Logger
	queue chan Message
	done  chan struct{}
}

func NewSMTPMailer(cfg Config, log *slog.Logger) *SMTPMailer {
	m := &SMTPMailer{
		cfg:   cfg,
		log:   log,
		queue: make(chan Message, 64),
		done:  make(chan struct{}),
	}
	go m.worker()
	return m
}

func (m *SMTPMailer) Queue(msg Message) {
	select {
	case m.queue <- msg:
	default:
		m.log.Error("mail queue full, dropping message", "subject", msg.Subject)
	}
}

func (m *SMTPMailer) Close() {
	close(m.queue)
	<-m.done
}

func (m *SMTPMailer) worker() {
	defer close(m.done)
	for msg := range m.queue {
		if err := m.send(msg); err != nil {
			m.log.Error("mail delivery failed", "subject", msg.Subject, "error", err)
			continue
		}
		m.log.Info("mail sent", "subject", msg.Subject, "recipients", len(msg.Recipients))
	}
}

func (m *SMTPMailer) send(msg Message) error {
	client, err := smtp.Dial(m.cfg.Host + ":" + m.cfg.Port)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{ServerName: m.cfg.Host}
		if err := client.StartTLS(tlsConfig); err != nil {
			return err
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	for _, rcpt := range msg.Recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(m.build(msg)); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func (m *SMTPMailer) build(msg Message) []byte {
	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}
	headers := []string{
		"From: " + from,
		"To: " + strings.Join(msg.Recipients, ", "),
		"Subject: " + msg.Subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + msg.HTML)
}
