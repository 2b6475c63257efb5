package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifycenter/pkg/logger"
	"github.com/dmitrymomot/notifycenter/pkg/tokens"
)

// Manager resolves a notification's messages and hands each to its gateway.
// Dispatches are synchronous and share no mutable state; a Manager is safe
// for concurrent use once constructed.
type Manager struct {
	storage         Storage
	gateways        map[GatewayType]Gateway
	defaultLanguage string
	logger          *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithGateway registers the implementation used for gateways of type t.
func WithGateway(t GatewayType, g Gateway) ManagerOption {
	return func(m *Manager) {
		if g != nil {
			m.gateways[t] = g
		}
	}
}

// WithManagerLogger sets the logger for the Manager.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithDefaultLanguage sets the language used by Dispatch.
func WithDefaultLanguage(code string) ManagerOption {
	return func(m *Manager) {
		m.defaultLanguage = code
	}
}

// NewManager creates a new notification manager.
func NewManager(storage Storage, opts ...ManagerOption) *Manager {
	m := &Manager{
		storage:         storage,
		gateways:        make(map[GatewayType]Gateway),
		defaultLanguage: "en",
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Dispatch sends the notification in the default language.
func (m *Manager) Dispatch(ctx context.Context, notificationID string, toks tokens.Tokens) Result {
	return m.DispatchLanguage(ctx, notificationID, toks, "")
}

// DispatchLanguage sends every published message of the notification in the
// requested language. It never returns an error: failures are reported in the
// Result and each delivery.
func (m *Manager) DispatchLanguage(ctx context.Context, notificationID string, toks tokens.Tokens, lang string) Result {
	if notificationID == "" {
		return skipped("", reasonNoNotification)
	}
	if lang == "" {
		lang = m.defaultLanguage
	}
	log := m.logger.With(logger.NotificationID(notificationID), logger.Language(lang))

	n, err := m.storage.FindNotification(ctx, notificationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.LogAttrs(ctx, slog.LevelWarn, "notification not found")
			return skipped(notificationID, ErrConfigurationMissing.Error())
		}
		log.LogAttrs(ctx, slog.LevelError, "failed to load notification", logger.Error(err))
		return Result{NotificationID: notificationID, Status: StatusFailed, Message: err.Error(), Deliveries: []Delivery{}}
	}

	messages, err := m.storage.FindMessages(ctx, n.ID)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "failed to load messages", logger.Error(err))
		return Result{NotificationID: n.ID, Status: StatusFailed, Message: err.Error(), Deliveries: []Delivery{}}
	}

	deliveries := make([]Delivery, 0, len(messages))
	for _, msg := range messages {
		if !msg.Published {
			continue
		}
		deliveries = append(deliveries, m.deliver(ctx, log, *n, msg, toks, lang))
	}

	if len(deliveries) == 0 {
		log.LogAttrs(ctx, slog.LevelInfo, "notification has no published messages")
		return skipped(n.ID, "no published messages")
	}

	res := aggregate(n.ID, deliveries)
	log.LogAttrs(ctx, slog.LevelInfo, "notification dispatched",
		logger.Status(string(res.Status)),
		slog.Int("deliveries", len(deliveries)))
	return res
}

func (m *Manager) deliver(ctx context.Context, log *slog.Logger, n Notification, msg Message, toks tokens.Tokens, lang string) Delivery {
	start := time.Now()
	d := Delivery{ID: uuid.New(), MessageID: msg.ID, GatewayID: msg.GatewayID}
	log = log.With(logger.MessageID(msg.ID), slog.String("delivery_id", d.ID.String()))

	progress := NewProgress(func(ctx context.Context, from, to State) {
		log.LogAttrs(ctx, slog.LevelDebug, "delivery state changed",
			slog.String("from", string(from)), slog.String("to", string(to)))
	})

	err := m.send(ctx, n, msg, toks, lang, progress, &d)

	d.State = progress.finish(ctx, err)
	d.Status = statusOf(d.State)
	d.Duration = time.Since(start)
	if err != nil {
		d.Error = err.Error()
		level := slog.LevelError
		if d.Status == StatusLanguageMissing {
			level = slog.LevelWarn
		}
		log.LogAttrs(ctx, level, "message not delivered",
			logger.Gateway(string(d.Gateway)),
			logger.Status(string(d.Status)),
			logger.Error(err))
	}
	return d
}

func (m *Manager) send(ctx context.Context, n Notification, msg Message, toks tokens.Tokens, lang string, progress *Progress, d *Delivery) (err error) {
	cfg, err := m.storage.FindGateway(ctx, msg.GatewayID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: gateway %q", ErrConfigurationMissing, msg.GatewayID)
		}
		return err
	}
	d.Gateway = cfg.Type

	g, ok := m.gateways[cfg.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedGateway, cfg.Type)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: gateway panicked: %v", ErrTransportFailure, r)
		}
	}()

	return g.Send(ctx, SendRequest{
		Notification: n,
		Gateway:      *cfg,
		Message:      msg,
		Tokens:       toks,
		Language:     lang,
		Progress:     progress,
	})
}
