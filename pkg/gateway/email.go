package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/notifycenter/pkg/attachments"
	"github.com/dmitrymomot/notifycenter/pkg/email"
	"github.com/dmitrymomot/notifycenter/pkg/email/templates"
	"github.com/dmitrymomot/notifycenter/pkg/expand"
	"github.com/dmitrymomot/notifycenter/pkg/logger"
	"github.com/dmitrymomot/notifycenter/pkg/notification"
	"github.com/dmitrymomot/notifycenter/pkg/recipients"
)

// Email renders a message's language variant into an email and hands it to an
// email.EmailSender.
type Email struct {
	cfg         Config
	languages   notification.LanguageFinder
	sender      email.EmailSender
	attachments *attachments.Resolver
	layouts     *templates.Registry
	logger      *slog.Logger
}

var _ notification.Gateway = (*Email)(nil)

// EmailOption configures the Email gateway.
type EmailOption func(*Email)

// WithEmailLogger sets the logger of the gateway.
func WithEmailLogger(l *slog.Logger) EmailOption {
	return func(e *Email) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithAttachments enables token and static attachments.
func WithAttachments(r *attachments.Resolver) EmailOption {
	return func(e *Email) {
		e.attachments = r
	}
}

// WithLayouts replaces the layout registry used for HTML bodies.
func WithLayouts(r *templates.Registry) EmailOption {
	return func(e *Email) {
		if r != nil {
			e.layouts = r
		}
	}
}

// NewEmail creates the email gateway.
func NewEmail(cfg Config, languages notification.LanguageFinder, sender email.EmailSender, opts ...EmailOption) *Email {
	e := &Email{
		cfg:       cfg,
		languages: languages,
		sender:    sender,
		layouts:   templates.NewRegistry(),
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(logger.Component("gateway"), logger.Gateway(string(notification.GatewayEmail)))
	return e
}

// Send implements notification.Gateway.
func (e *Email) Send(ctx context.Context, req notification.SendRequest) error {
	code := req.Language
	if code == "" {
		code = e.cfg.DefaultLanguage
	}

	lang, err := e.languages.FindLanguage(ctx, req.Message.ID, code)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "could not find matching language or fallback",
			logger.MessageID(req.Message.ID), logger.Language(code), logger.Error(err))
		return err
	}
	if err := req.Progress.Advance(ctx, notification.StateLanguageResolved); err != nil {
		return err
	}

	params, err := e.compose(ctx, req, lang)
	if err != nil {
		return err
	}
	if err := req.Progress.Advance(ctx, notification.StatePayloadAssembled); err != nil {
		return err
	}

	if err := e.sender.SendEmail(ctx, params); err != nil {
		e.logger.LogAttrs(ctx, slog.LevelError, "could not send email",
			logger.MessageID(req.Message.ID), logger.Error(err))
		return fmt.Errorf("%w: message %q: %w", notification.ErrTransportFailure, req.Message.ID, err)
	}

	e.logger.LogAttrs(ctx, slog.LevelDebug, "email sent",
		logger.MessageID(req.Message.ID), logger.Language(lang.Language),
		slog.Int("to", len(params.To)), slog.Int("attachments", len(params.Attachments)))
	return nil
}

func (e *Email) compose(ctx context.Context, req notification.SendRequest, lang *notification.Language) (email.SendEmailParams, error) {
	toks := req.Tokens
	header := func(s string) string {
		return strings.TrimSpace(expand.Expand(s, toks, expand.NoTags|expand.NoBreaks))
	}

	senderName := lang.SenderName
	if senderName == "" {
		senderName = e.cfg.DefaultSenderName
	}
	senderAddress := lang.SenderAddress
	if senderAddress == "" {
		senderAddress = e.cfg.DefaultSenderAddress
	}

	params := email.SendEmailParams{
		From:     header(senderAddress),
		FromName: header(senderName),
		Subject:  header(lang.Subject),
		BodyText: AbsoluteURLs(expand.Expand(lang.Text, toks, expand.NoTags), e.cfg.BaseURL),
		To:       recipients.Compile(lang.Recipients, toks),
		Priority: req.Message.EmailPriority,
		Tag:      req.Notification.Type,
	}
	if lang.ReplyTo != "" {
		params.ReplyTo = header(lang.ReplyTo)
	}
	if len(params.To) == 0 {
		return params, fmt.Errorf("%w: message %q", notification.ErrNoRecipients, req.Message.ID)
	}
	if cc := recipients.Compile(lang.RecipientCC, toks); len(cc) > 0 {
		params.Cc = cc
	}
	if bcc := recipients.Compile(lang.RecipientBCC, toks); len(bcc) > 0 {
		params.Bcc = bcc
	}

	if lang.Mode == notification.ModeTextAndHTML {
		html, err := e.layouts.Wrap(ctx, req.Message.EmailTemplate, templates.LayoutData{
			Title:    params.Subject,
			Language: lang.Language,
			Body:     lang.HTML,
		})
		if err != nil {
			return params, fmt.Errorf("message %q: %w", req.Message.ID, err)
		}
		params.BodyHTML = AbsoluteURLs(expand.Expand(html, toks, 0), e.cfg.BaseURL)
	}

	if e.attachments != nil {
		params.Attachments = append(params.Attachments, e.attachments.TokenAttachments(ctx, lang.AttachmentTokens, toks)...)
		params.Attachments = append(params.Attachments, e.attachments.StaticAttachments(ctx, lang.Attachments)...)
	}

	if s := req.Gateway.SMTP; s.Enabled() {
		params.Override = email.SMTPOverride{
			Host:       s.Host,
			Port:       s.Port,
			User:       s.User,
			Password:   s.Password,
			Encryption: s.Encryption,
		}
	}

	return params, nil
}
