package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/notifycenter/pkg/validator"
)

// EmailSender represents an interface for sending emails.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// Priority values for the X-Priority header. Zero leaves the header unset.
const (
	PriorityHighest = 1
	PriorityHigh    = 2
	PriorityNormal  = 3
	PriorityLow     = 4
	PriorityLowest  = 5
)

// SendEmailParams represents the parameters for sending an email.
// Recipient entries may use the friendly "Name <address>" form.
type SendEmailParams struct {
	From        string       `json:"from"`
	FromName    string       `json:"from_name,omitempty"`
	ReplyTo     string       `json:"reply_to,omitempty"`
	To          []string     `json:"to"`
	Cc          []string     `json:"cc,omitempty"`
	Bcc         []string     `json:"bcc,omitempty"`
	Subject     string       `json:"subject"`
	BodyText    string       `json:"body_text,omitempty"`
	BodyHTML    string       `json:"body_html,omitempty"`
	Attachments []string     `json:"attachments,omitempty"` // absolute file paths
	Priority    int          `json:"priority,omitempty"`
	Tag         string       `json:"tag,omitempty"`
	Override    SMTPOverride `json:"-"`
}

// Validate checks the parameters before any transport is contacted.
func (p SendEmailParams) Validate() error {
	err := validator.Apply(
		validator.ValidEmail("from", p.From),
		validator.RequiredSlice("to", p.To),
		validAddressList("to", p.To),
		validAddressList("cc", p.Cc),
		validAddressList("bcc", p.Bcc),
		validator.When(p.ReplyTo != "", validAddressList("reply_to", []string{p.ReplyTo})),
		validator.Required("subject", p.Subject),
		validator.When(p.Priority != 0, validator.InRange("priority", p.Priority, PriorityHighest, PriorityLowest)),
		validator.When(!p.Override.IsZero(), validator.OneOf("override.encryption", p.Override.Encryption,
			EncryptionNone, EncryptionSSL, EncryptionTLS)),
	)
	if err != nil {
		return errors.Join(ErrInvalidParams, err)
	}
	return nil
}

// New builds the sender selected by cfg.Transport.
func New(cfg Config) (EmailSender, error) {
	switch cfg.Transport {
	case TransportSMTP, "":
		return NewSMTPSender(cfg)
	case TransportPostmark:
		return NewPostmarkClient(cfg)
	case TransportDev:
		return NewDevSender(cfg.DevOutputDir), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.Transport)
	}
}

func validAddressList(field string, list []string) validator.Rule {
	return validator.Rule{
		Check: func() bool {
			for _, entry := range list {
				if _, _, ok := validator.ParseAddress(entry); !ok {
					return false
				}
			}
			return true
		},
		Error: validator.ValidationError{Field: field, Message: "must contain only valid email addresses"},
	}
}

func priorityHeader(p int) string {
	switch p {
	case PriorityHighest:
		return "1 (Highest)"
	case PriorityHigh:
		return "2 (High)"
	case PriorityNormal:
		return "3 (Normal)"
	case PriorityLow:
		return "4 (Low)"
	case PriorityLowest:
		return "5 (Lowest)"
	}
	return ""
}
