package notification

import (
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifycenter/pkg/validator"
)

// GatewayType identifies a delivery channel.
type GatewayType string

const GatewayEmail GatewayType = "email"

// Mode selects which bodies an email message carries.
type Mode string

const (
	ModeTextOnly    Mode = "textOnly"
	ModeTextAndHTML Mode = "textAndHtml"
)

// SMTP encryption values accepted in SMTPSettings.Encryption.
const (
	EncryptionNone = ""
	EncryptionSSL  = "ssl"
	EncryptionTLS  = "tls"
)

// Notification is a logical event ("member_registration", ...) that owns messages.
type Notification struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Type  string `json:"type" yaml:"type"`
}

// SMTPSettings override the transport's SMTP server for one gateway.
// An empty Host means the global settings apply.
type SMTPSettings struct {
	Host       string `json:"host,omitempty" yaml:"host"`
	Port       int    `json:"port,omitempty" yaml:"port"`
	User       string `json:"user,omitempty" yaml:"user"`
	Password   string `json:"-" yaml:"password"`
	Encryption string `json:"encryption,omitempty" yaml:"encryption"`
}

// Enabled reports whether the settings replace the global SMTP server.
func (s SMTPSettings) Enabled() bool {
	return s.Host != ""
}

// GatewayConfig describes a configured delivery channel.
type GatewayConfig struct {
	ID    string       `json:"id" yaml:"id"`
	Title string       `json:"title" yaml:"title"`
	Type  GatewayType  `json:"type" yaml:"type"`
	SMTP  SMTPSettings `json:"smtp" yaml:"smtp"`
}

// Message binds a notification to a gateway and owns its language variants.
type Message struct {
	ID             string `json:"id" yaml:"id"`
	NotificationID string `json:"notification_id" yaml:"notification_id"`
	GatewayID      string `json:"gateway_id" yaml:"gateway_id"`
	Title          string `json:"title" yaml:"title"`
	Published      bool   `json:"published" yaml:"published"`
	EmailTemplate  string `json:"email_template" yaml:"email_template"`
	EmailPriority  int    `json:"email_priority" yaml:"email_priority"` // 1 highest, 3 normal, 5 lowest, 0 unset
}

// Language is the per-language content of a message.
type Language struct {
	ID               string      `json:"id" yaml:"id"`
	MessageID        string      `json:"message_id" yaml:"message_id"`
	Language         string      `json:"language" yaml:"language"`
	Fallback         bool        `json:"fallback" yaml:"fallback"`
	Recipients       string      `json:"recipients" yaml:"recipients"`
	RecipientCC      string      `json:"recipient_cc" yaml:"recipient_cc"`
	RecipientBCC     string      `json:"recipient_bcc" yaml:"recipient_bcc"`
	SenderName       string      `json:"sender_name" yaml:"sender_name"`
	SenderAddress    string      `json:"sender_address" yaml:"sender_address"`
	ReplyTo          string      `json:"reply_to" yaml:"reply_to"`
	Subject          string      `json:"subject" yaml:"subject"`
	Mode             Mode        `json:"mode" yaml:"mode"`
	Text             string      `json:"text" yaml:"text"`
	HTML             string      `json:"html" yaml:"html"`
	AttachmentTokens string      `json:"attachment_tokens" yaml:"attachment_tokens"`
	Attachments      []uuid.UUID `json:"attachments" yaml:"attachments"`
}

func (n Notification) Validate() error {
	return wrapInvalid(validator.Apply(
		validator.Required("id", n.ID),
		validator.Required("type", n.Type),
	))
}

func (g GatewayConfig) Validate() error {
	return wrapInvalid(validator.Apply(
		validator.Required("id", g.ID),
		validator.OneOf("type", string(g.Type), string(GatewayEmail)),
		validator.When(g.SMTP.Enabled(), validator.OneOf("smtp.encryption", g.SMTP.Encryption,
			EncryptionNone, EncryptionSSL, EncryptionTLS)),
		validator.When(g.SMTP.Port != 0, validator.InRange("smtp.port", g.SMTP.Port, 1, 65535)),
	))
}

func (m Message) Validate() error {
	return wrapInvalid(validator.Apply(
		validator.Required("id", m.ID),
		validator.Required("notification_id", m.NotificationID),
		validator.Required("gateway_id", m.GatewayID),
		validator.When(m.EmailPriority != 0, validator.InRange("email_priority", m.EmailPriority, 1, 5)),
	))
}

// Validate checks the variant. An empty Mode is treated as textOnly.
func (l Language) Validate() error {
	return wrapInvalid(validator.Apply(
		validator.Required("id", l.ID),
		validator.Required("message_id", l.MessageID),
		validator.Required("language", l.Language),
		validator.When(l.Mode != "", validator.OneOf("mode", string(l.Mode),
			string(ModeTextOnly), string(ModeTextAndHTML))),
	))
}

func wrapInvalid(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrInvalidModel, err)
}
