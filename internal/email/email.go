package email

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.From != ""
}

var ErrNotConfigured = errors.New("smtp not configured")

// SendText sends a plain-text message.
func SendText(cfg SMTPConfig, to, subject, body string) error {
	if !cfg.Configured() {
		return ErrNotConfigured
	}
	msg := buildMessage(cfg.From, to, subject, body)

	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return smtp.SendMail(addr, auth, cfg.From, []string{to}, msg)
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// OTPMailer delivers login codes to email identifiers.
type OTPMailer struct {
	Cfg SMTPConfig
}

var ErrNoChannel = errors.New("no delivery channel for identifier")

func (m OTPMailer) SendOTP(ctx context.Context, identifier, code string) error {
	_ = ctx
	if !strings.Contains(identifier, "@") {
		return ErrNoChannel
	}
	body := "Hello,\n\n" +
		"Your Serene login code is: " + code + "\n\n" +
		"The code expires in a few minutes and can be used once.\n" +
		"If you did not request it, you can ignore this email.\n\n" +
		"Serene\n"
	return SendText(m.Cfg, identifier, "Your Serene login code", body)
}
