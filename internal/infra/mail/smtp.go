package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Rista10/event-planner-application/internal/core/port"
	"github.com/Rista10/event-planner-application/internal/infra/config"
	"github.com/Rista10/event-planner-application/internal/infra/logger"
)

const defaultSendTimeout = 10 * time.Second

// Message is a rendered HTML email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Expiries are printed in email bodies so recipients know how long links stay valid.
type Expiries struct {
	EmailVerification time.Duration
	PasswordReset     time.Duration
	TwoFactor         time.Duration
}

// SMTPMailer renders auth emails and hands them to a Sender.
type SMTPMailer struct {
	sender      Sender
	from        string
	frontendURL string
	expiries    Expiries
	logger      *zap.Logger
}

// NewSMTPMailer builds a mailer that relays through the configured SMTP server.
func NewSMTPMailer(cfg config.SMTPSettings, frontendURL string, expiries Expiries, log *zap.Logger) *SMTPMailer {
	return NewMailer(NewSMTPSender(cfg), cfg.From, frontendURL, expiries, log)
}

// NewMailer builds a mailer around an arbitrary Sender.
func NewMailer(sender Sender, from, frontendURL string, expiries Expiries, log *zap.Logger) *SMTPMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &SMTPMailer{
		sender:      sender,
		from:        from,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		expiries:    expiries,
		logger:      log,
	}
}

// SendVerificationEmail mails the email verification link.
func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	html, err := render(verificationTemplate, templateData{
		Name:   name,
		URL:    m.link("/verify-email", token),
		Expiry: humanize(m.expiries.EmailVerification),
	})
	if err != nil {
		return err
	}
	return m.send(ctx, to, subjectVerification, html)
}

// SendPasswordResetEmail mails the password reset link.
func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	html, err := render(passwordResetTemplate, templateData{
		Name:   name,
		URL:    m.link("/reset-password", token),
		Expiry: humanize(m.expiries.PasswordReset),
	})
	if err != nil {
		return err
	}
	return m.send(ctx, to, subjectPasswordReset, html)
}

// SendTwoFactorCode mails the login OTP.
func (m *SMTPMailer) SendTwoFactorCode(ctx context.Context, to, name, code string) error {
	html, err := render(twoFactorTemplate, templateData{
		Name:   name,
		Code:   code,
		Expiry: humanize(m.expiries.TwoFactor),
	})
	if err != nil {
		return err
	}
	return m.send(ctx, to, subjectTwoFactorCode, html)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, html string) error {
	if err := m.sender.Send(ctx, Message{From: m.from, To: to, Subject: subject, HTML: html}); err != nil {
		return fmt.Errorf("send %q: %w", subject, err)
	}
	m.logger.Info("Email sent successfully",
		zap.String("to", logger.MaskEmail(to)),
		zap.String("subject", subject),
	)
	return nil
}

func (m *SMTPMailer) link(path, token string) string {
	return m.frontendURL + path + "?token=" + url.QueryEscape(token)
}

func humanize(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short time"
	case d%(24*time.Hour) == 0:
		return plural(int(d/(24*time.Hour)), "day")
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d.Round(time.Minute)/time.Minute), "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

// SMTPSender relays over STARTTLS with PLAIN auth.
type SMTPSender struct {
	addr     string
	host     string
	username string
	password string
	timeout  time.Duration
}

// NewSMTPSender builds a sender from SMTP settings.
func NewSMTPSender(cfg config.SMTPSettings) *SMTPSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &SMTPSender{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host:     cfg.Host,
		username: cfg.User,
		password: cfg.Pass,
		timeout:  timeout,
	}
}

// Send dials the relay and delivers msg, bounded by the sender timeout and ctx.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if s.username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(encode(msg)); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return client.Quit()
}

func encode(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + msg.From + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")
	return []byte(b.String())
}

var _ port.Mailer = (*SMTPMailer)(nil)
