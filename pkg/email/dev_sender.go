package email

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DevSender implements EmailSender for local development.
// It saves the bodies and a JSON envelope to a directory
// instead of sending them through an email service.
type DevSender struct {
	dir string
}

// NewDevSender creates a development email sender that saves emails to disk.
// The directory will be created if it doesn't exist.
func NewDevSender(dir string) EmailSender {
	return &DevSender{dir: dir}
}

// emailMetadata contains the envelope saved to JSON (bodies go to separate files).
type emailMetadata struct {
	Timestamp   string        `json:"timestamp"`
	From        string        `json:"from"`
	FromName    string        `json:"from_name,omitempty"`
	ReplyTo     string        `json:"reply_to,omitempty"`
	To          []string      `json:"to"`
	Cc          []string      `json:"cc,omitempty"`
	Bcc         []string      `json:"bcc,omitempty"`
	Subject     string        `json:"subject"`
	Priority    int           `json:"priority,omitempty"`
	Tag         string        `json:"tag,omitempty"`
	Attachments []string      `json:"attachments,omitempty"`
	Override    *SMTPOverride `json:"smtp_override,omitempty"`
}

// SendEmail writes <timestamp>_<subject>.json plus .txt and .html body files.
func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrFailedToSendEmail, err)
	}

	now := time.Now()
	identifier := params.Tag
	if identifier == "" {
		identifier = params.Subject
	}
	baseFilename := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405.000000"), sanitizeFilename(identifier))

	if params.BodyText != "" {
		if err := os.WriteFile(filepath.Join(d.dir, baseFilename+".txt"), []byte(params.BodyText), 0644); err != nil {
			return fmt.Errorf("%w: failed to write text file: %v", ErrFailedToSendEmail, err)
		}
	}
	if params.BodyHTML != "" {
		if err := os.WriteFile(filepath.Join(d.dir, baseFilename+".html"), []byte(params.BodyHTML), 0644); err != nil {
			return fmt.Errorf("%w: failed to write HTML file: %v", ErrFailedToSendEmail, err)
		}
	}

	metadata := emailMetadata{
		Timestamp:   now.Format(time.RFC3339),
		From:        params.From,
		FromName:    params.FromName,
		ReplyTo:     params.ReplyTo,
		To:          params.To,
		Cc:          params.Cc,
		Bcc:         params.Bcc,
		Subject:     params.Subject,
		Priority:    params.Priority,
		Tag:         params.Tag,
		Attachments: params.Attachments,
	}
	if !params.Override.IsZero() {
		o := params.Override
		metadata.Override = &o
	}

	jsonData, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal metadata: %v", ErrFailedToSendEmail, err)
	}

	if err := os.WriteFile(filepath.Join(d.dir, baseFilename+".json"), jsonData, 0644); err != nil {
		return fmt.Errorf("%w: failed to write JSON file: %v", ErrFailedToSendEmail, err)
	}

	return nil
}

// sanitizeRegex matches characters that are not alphanumeric, dash, underscore, or dot
var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeFilename converts a string into a safe lower-case filename of at most 100 bytes.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}

	return strings.ToLower(s)
}
