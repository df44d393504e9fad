package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	htmltemplate "html/template"
	"mime"
	"net/smtp"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/azayd/website/backend/internal/config"
	"github.com/azayd/website/backend/internal/models"
	"github.com/azayd/website/backend/internal/web"
	"github.com/azayd/website/backend/pkg/logger"
)

// Message is one outgoing email with plain-text and HTML bodies.
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers messages.
type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, msg *Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailService struct {
	config   config.SMTPConfig
	sendMail sendFunc
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	s := &EmailService{config: cfg}
	s.sendMail = smtp.SendMail
	return s
}

func (s *EmailService) Enabled() bool {
	return s.config.Enabled && s.config.Host != ""
}

func (s *EmailService) Send(ctx context.Context, msg *Message) error {
	if !s.Enabled() {
		return nil
	}
	if len(msg.To) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := s.config.From
	if from == "" {
		from = s.config.Username
	}

	body, err := buildMIME(from, msg)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	envelopeFrom := addressOnly(from)
	if s.config.UseTLS {
		err = s.sendEmailTLS(addr, auth, envelopeFrom, msg.To, body)
	} else {
		err = s.sendMail(addr, auth, envelopeFrom, msg.To, body)
	}

	if err != nil {
		logger.Infof("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent %q to %v", msg.Subject, msg.To)
	return nil
}

func (s *EmailService) sendEmailTLS(addr string, auth smtp.Auth, from string, to []string, message []byte) error {
	tlsConfig := &tls.Config{
		ServerName: s.config.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err = w.Write(message); err != nil {
		return err
	}

	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// buildMIME renders msg as multipart/alternative with the text part first.
func buildMIME(from string, msg *Message) ([]byte, error) {
	boundary, err := randomBoundary()
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	headers := [][2]string{
		{"From", from},
		{"To", strings.Join(msg.To, ", ")},
		{"Subject", mime.QEncoding.Encode("utf-8", msg.Subject)},
		{"Date", time.Now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", boundary)},
	}
	for _, h := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h[0], h[1])
	}
	b.WriteString("\r\n")

	for _, part := range []struct{ contentType, body string }{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.HTML},
	} {
		if part.body == "" {
			continue
		}
		fmt.Fprintf(&b, "--%s\r\nContent-Type: %s\r\nContent-Transfer-Encoding: 8bit\r\n\r\n", boundary, part.contentType)
		b.WriteString(strings.ReplaceAll(part.body, "\n", "\r\n"))
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes(), nil
}

func randomBoundary() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// addressOnly strips a display name: "Team <a@b.c>" becomes "a@b.c".
func addressOnly(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return strings.TrimSpace(from)
}

// ConfirmationData is the template context of the application email.
type ConfirmationData struct {
	Name        string
	JobTitle    string
	SubmittedAt string
	ResumeFile  bool
	ResumeLink  bool
	CurrentYear int
}

// ConfirmationRenderer renders application confirmation emails from the
// embedded templates.
type ConfirmationRenderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewConfirmationRenderer() (*ConfirmationRenderer, error) {
	html, err := web.EmailHTML()
	if err != nil {
		return nil, fmt.Errorf("parse html email templates: %w", err)
	}
	text, err := web.EmailText()
	if err != nil {
		return nil, fmt.Errorf("parse text email templates: %w", err)
	}
	return &ConfirmationRenderer{html: html, text: text}, nil
}

// Render builds the confirmation for app. The job title falls back to
// "our company" when the posting is gone.
func (r *ConfirmationRenderer) Render(app *models.JobApplication, now time.Time) (*Message, error) {
	jobTitle := "our company"
	if app.Job != nil && app.Job.Title != "" {
		jobTitle = app.Job.Title
	}
	data := ConfirmationData{
		Name:        app.Name,
		JobTitle:    jobTitle,
		SubmittedAt: app.CreatedAt.Format("January 02, 2006"),
		ResumeFile:  app.ResumeFile != "",
		ResumeLink:  app.ResumeLink != "",
		CurrentYear: now.Year(),
	}

	var html, text bytes.Buffer
	if err := r.html.ExecuteTemplate(&html, web.EmailApplicationConfirmation+".html", data); err != nil {
		return nil, fmt.Errorf("render html confirmation: %w", err)
	}
	if err := r.text.ExecuteTemplate(&text, web.EmailApplicationConfirmation+".txt", data); err != nil {
		return nil, fmt.Errorf("render text confirmation: %w", err)
	}

	return &Message{
		To:      []string{app.Email},
		Subject: "Application Received for " + jobTitle,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
