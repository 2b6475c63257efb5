package email

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/dmitrymomot/notifycenter/pkg/validator"
)

type postmarkClient struct {
	client *postmark.Client
	config Config
}

// NewPostmarkClient creates a Postmark-backed email sender.
// Both tokens are required for runtime operation - this enforces
// explicit configuration rather than silent failures in production.
// SMTP overrides in SendEmailParams are ignored by this transport.
func NewPostmarkClient(cfg Config) (EmailSender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidConfig)
	}

	return &postmarkClient{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		config: cfg,
	}, nil
}

// MustNewPostmarkClient creates a Postmark client that panics on invalid config.
func MustNewPostmarkClient(cfg Config) EmailSender {
	client, err := NewPostmarkClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// SendEmail implements EmailSender using Postmark's transactional API.
// Attachments are read from disk and sent inline as base64 content.
func (c *postmarkClient) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	msg, err := buildPostmarkEmail(params)
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	resp, err := c.client.SendEmail(ctx, msg)
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}

func buildPostmarkEmail(p SendEmailParams) (postmark.Email, error) {
	from := p.From
	if p.FromName != "" {
		from = fmt.Sprintf("%q <%s>", p.FromName, p.From)
	}

	msg := postmark.Email{
		From:       from,
		To:         joinAddresses(p.To),
		Cc:         joinAddresses(p.Cc),
		Bcc:        joinAddresses(p.Bcc),
		ReplyTo:    p.ReplyTo,
		Subject:    p.Subject,
		Tag:        p.Tag,
		TextBody:   p.BodyText,
		HTMLBody:   p.BodyHTML,
		TrackOpens: p.BodyHTML != "",
	}
	if p.BodyHTML != "" {
		msg.TrackLinks = "HtmlOnly"
	}
	if h := priorityHeader(p.Priority); h != "" {
		msg.Headers = append(msg.Headers, postmark.Header{Name: "X-Priority", Value: h})
	}

	for _, path := range p.Attachments {
		data, err := os.ReadFile(path)
		if err != nil {
			return postmark.Email{}, fmt.Errorf("read attachment %s: %w", filepath.Base(path), err)
		}
		msg.Attachments = append(msg.Attachments, postmark.Attachment{
			Name:        filepath.Base(path),
			Content:     base64.StdEncoding.EncodeToString(data),
			ContentType: contentType(path),
		})
	}

	return msg, nil
}

func joinAddresses(list []string) string {
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if name, addr, ok := validator.ParseAddress(entry); ok {
			if name != "" {
				out = append(out, fmt.Sprintf("%q <%s>", name, addr))
				continue
			}
			out = append(out, addr)
		}
	}
	return strings.Join(out, ",")
}

func contentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
