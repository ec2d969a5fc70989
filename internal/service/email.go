// Package service holds outbound collaborators: mail delivery, the
// checkout provider and the order event publisher.  All of them are
// fire-and-forget from the request handler's point of view; failures are
// logged, never retried inline.
package service

import (
	"fmt"
	"log"
	"net/smtp"
)

// Mailer delivers a single HTML email.  Handlers treat delivery as
// best-effort: a send failure is logged and the request still succeeds.
type Mailer interface {
	Send(to, subject, bodyHTML string) error
}

// SMTPMailer sends mail through a plain SMTP relay.  No mail library
// exists in this stack; net/smtp covers the single-recipient HTML mail
// this service sends.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (m *SMTPMailer) Send(to, subject, bodyHTML string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n",
		m.From, to, subject, bodyHTML)
	var a smtp.Auth
	if m.Username != "" {
		a = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	return smtp.SendMail(m.Host+":"+m.Port, a, m.From, []string{to}, []byte(msg))
}

// LogMailer is the dev fallback used when no SMTP relay is configured.
// It writes the message to the server log so reset links remain reachable
// during local development.
type LogMailer struct{}

func (LogMailer) Send(to, subject, bodyHTML string) error {
	log.Printf("mail (not sent, no SMTP configured): to=%s subject=%q body=%s", to, subject, bodyHTML)
	return nil
}
