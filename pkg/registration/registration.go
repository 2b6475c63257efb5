// Package registration sends the member registration notification.
//
// It turns the submitted registration data into tokens (admin_email, domain,
// link, member_newsletter and one member_<field> per form field) and
// dispatches the configured notification. Send reports whether the
// notification took over, in which case the caller suppresses its built-in
// activation email.
//
// The package is wired by the host application's registration flow, which
// passes its notification.Manager as the Dispatcher:
//
//	m := registration.NewMailer(cfg, manager)
//	handled := m.Send(ctx, moduleNotificationID, data)
package registration

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/dmitrymomot/notifycenter/pkg/logger"
	"github.com/dmitrymomot/notifycenter/pkg/notification"
	"github.com/dmitrymomot/notifycenter/pkg/tokens"
)

// Config describes the site the member registered on.
type Config struct {
	AdminEmail string `env:"ADMIN_EMAIL"`
	Host       string `env:"SITE_HOST" envDefault:"localhost"`
	BaseURL    string `env:"SITE_BASE_URL" envDefault:"http://localhost:8080/"`
	// DisableAlias means page URLs already carry a query string.
	DisableAlias bool `env:"SITE_DISABLE_ALIAS" envDefault:"false"`
}

// Data is one submitted registration.
type Data struct {
	Activation string
	// RequestPath is the path and query of the registration page, without leading slash.
	RequestPath string
	Language    string
	Fields      map[string]string
	// Newsletters holds the ids of the channels the member subscribed to.
	Newsletters []string
}

// Dispatcher sends a notification. *notification.Manager implements it.
type Dispatcher interface {
	DispatchLanguage(ctx context.Context, notificationID string, toks tokens.Tokens, lang string) notification.Result
}

// ChannelFinder returns the titles of newsletter channels.
type ChannelFinder interface {
	ChannelTitles(ctx context.Context, ids []string) ([]string, error)
}

// FieldFormatter renders a raw form value for humans.
type FieldFormatter func(field, value string) string

// Mailer builds registration tokens and hands them to a Dispatcher.
type Mailer struct {
	cfg        Config
	dispatcher Dispatcher
	channels   ChannelFinder
	format     FieldFormatter
	logger     *slog.Logger
}

type Option func(*Mailer)

// WithChannels enables the member_newsletter token.
func WithChannels(f ChannelFinder) Option {
	return func(m *Mailer) {
		m.channels = f
	}
}

func WithFieldFormatter(f FieldFormatter) Option {
	return func(m *Mailer) {
		if f != nil {
			m.format = f
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Mailer) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewMailer(cfg Config, d Dispatcher, opts ...Option) *Mailer {
	m := &Mailer{
		cfg:        cfg,
		dispatcher: d,
		format:     func(_, v string) string { return v },
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("registration"))
	return m
}

// Send dispatches notificationID for the registration. It returns true when
// the notification exists, whatever the delivery outcome.
func (m *Mailer) Send(ctx context.Context, notificationID string, data Data) bool {
	if notificationID == "" {
		return false
	}

	res := m.dispatcher.DispatchLanguage(ctx, notificationID, m.Tokens(ctx, data), data.Language)
	if res.Status == notification.StatusFailed {
		m.logger.LogAttrs(ctx, slog.LevelError, "registration notification failed",
			logger.NotificationID(notificationID), slog.String("reason", res.Message))
	}
	return res.Configured()
}

// Tokens builds the token set of a registration.
func (m *Mailer) Tokens(ctx context.Context, data Data) tokens.Tokens {
	b := tokens.NewBuilder().
		Set("admin_email", m.cfg.AdminEmail).
		Set("domain", m.cfg.Host).
		Set("link", ActivationLink(m.cfg.BaseURL, data.RequestPath, data.Activation, m.cfg.DisableAlias))

	b.WithPrefix("member_")
	for _, field := range slices.Sorted(maps.Keys(data.Fields)) {
		b.Set(field, m.format(field, data.Fields[field]))
	}

	if m.channels != nil {
		titles := []string{}
		if len(data.Newsletters) > 0 {
			found, err := m.channels.ChannelTitles(ctx, data.Newsletters)
			if err != nil {
				m.logger.LogAttrs(ctx, slog.LevelWarn, "failed to load newsletter channels", logger.Error(err))
			} else {
				titles = found
			}
		}
		b.Set("newsletter", strings.Join(titles, "\n"))
	}

	return b.Build()
}

// ActivationLink appends the activation token to the registration page URL.
func ActivationLink(base, request, activation string, disableAlias bool) string {
	sep := "?"
	if disableAlias || strings.Contains(request, "?") {
		sep = "&"
	}
	return base + request + sep + "token=" + activation
}
