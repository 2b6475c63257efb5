package email

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"gopkg.in/mail.v2"

	"github.com/dmitrymomot/notifycenter/pkg/validator"
)

// smtpTimeout bounds dialing and each SMTP command.
const smtpTimeout = 30 * time.Second

type smtpSender struct {
	config Config
	send   func(d *mail.Dialer, m *mail.Message) error
}

// SMTPOption configures the SMTP sender.
type SMTPOption func(*smtpSender)

// WithSMTPSendFunc replaces the function that delivers a built message.
// Useful to capture messages in tests.
func WithSMTPSendFunc(fn func(d *mail.Dialer, m *mail.Message) error) SMTPOption {
	return func(s *smtpSender) {
		if fn != nil {
			s.send = fn
		}
	}
}

// NewSMTPSender creates an SMTP-backed email sender.
// Per-message SMTPOverride settings take precedence over cfg.
func NewSMTPSender(cfg Config, opts ...SMTPOption) (EmailSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%w: SMTPHost is required", ErrInvalidConfig)
	}
	if cfg.SMTPPort <= 0 {
		return nil, fmt.Errorf("%w: SMTPPort must be positive", ErrInvalidConfig)
	}
	switch cfg.SMTPEncryption {
	case EncryptionNone, EncryptionSSL, EncryptionTLS:
	default:
		return nil, fmt.Errorf("%w: unsupported SMTPEncryption %q", ErrInvalidConfig, cfg.SMTPEncryption)
	}

	s := &smtpSender{
		config: cfg,
		send: func(d *mail.Dialer, m *mail.Message) error {
			return d.DialAndSend(m)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SendEmail builds a MIME message and hands it to the SMTP server.
// The text body is the primary part; HTML, when present, is added as alternative.
func (s *smtpSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	m := buildSMTPMessage(params)
	if err := s.send(s.dialer(params.Override), m); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	return nil
}

func (s *smtpSender) dialer(o SMTPOverride) *mail.Dialer {
	host, port, user, pass, enc := s.config.SMTPHost, s.config.SMTPPort,
		s.config.SMTPUser, s.config.SMTPPassword, s.config.SMTPEncryption
	if !o.IsZero() {
		host, user, pass, enc = o.Host, o.User, o.Password, o.Encryption
		if o.Port > 0 {
			port = o.Port
		}
	}

	d := mail.NewDialer(host, port, user, pass)
	d.Timeout = smtpTimeout
	switch enc {
	case EncryptionSSL:
		d.SSL = true
	case EncryptionTLS:
		d.StartTLSPolicy = mail.MandatoryStartTLS
	default:
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	}
	return d
}

func buildSMTPMessage(p SendEmailParams) *mail.Message {
	m := mail.NewMessage()

	m.SetAddressHeader("From", p.From, p.FromName)
	m.SetHeader("To", formatAddresses(m, p.To)...)
	if len(p.Cc) > 0 {
		m.SetHeader("Cc", formatAddresses(m, p.Cc)...)
	}
	if len(p.Bcc) > 0 {
		m.SetHeader("Bcc", formatAddresses(m, p.Bcc)...)
	}
	if p.ReplyTo != "" {
		m.SetHeader("Reply-To", formatAddresses(m, []string{p.ReplyTo})...)
	}
	m.SetHeader("Subject", p.Subject)
	if h := priorityHeader(p.Priority); h != "" {
		m.SetHeader("X-Priority", h)
	}

	switch {
	case p.BodyText != "" && p.BodyHTML != "":
		m.SetBody("text/plain", p.BodyText)
		m.AddAlternative("text/html", p.BodyHTML)
	case p.BodyHTML != "":
		m.SetBody("text/html", p.BodyHTML)
	default:
		m.SetBody("text/plain", p.BodyText)
	}

	for _, path := range p.Attachments {
		m.Attach(path, mail.Rename(filepath.Base(path)))
	}

	return m
}

func formatAddresses(m *mail.Message, list []string) []string {
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if name, addr, ok := validator.ParseAddress(entry); ok {
			out = append(out, m.FormatAddress(addr, name))
		}
	}
	return out
}
