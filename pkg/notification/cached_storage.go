package notification

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifycenter/pkg/cache"
	"github.com/dmitrymomot/notifycenter/pkg/logger"
)

// CachedStorage serves configuration reads from a cache.Cache and falls back
// to the wrapped Storage on a miss. Attachment lookups are never cached.
// Cache failures are logged and never fail a read.
type CachedStorage struct {
	Storage
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// CacheOption configures a CachedStorage.
type CacheOption func(*CachedStorage)

// WithCacheLogger sets the logger used for cache failures.
func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(s *CachedStorage) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewCachedStorage wraps next. ttl <= 0 keeps entries until evicted.
func NewCachedStorage(next Storage, c cache.Cache, ttl time.Duration, opts ...CacheOption) *CachedStorage {
	s := &CachedStorage{Storage: next, cache: c, ttl: ttl, logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("config_cache"))
	return s
}

func notificationKey(id string) string { return "notification:" + id }

func messagesKey(id string) string { return "messages:" + id }

func gatewayKey(id string) string { return "gateway:" + id }

func languageKey(msgID, code string) string {
	return "language:" + msgID + ":" + CanonicalLanguage(code)
}

func (s *CachedStorage) FindNotification(ctx context.Context, id string) (*Notification, error) {
	return cached(ctx, s, notificationKey(id), func() (*Notification, error) {
		return s.Storage.FindNotification(ctx, id)
	})
}

func (s *CachedStorage) FindMessages(ctx context.Context, notificationID string) ([]Message, error) {
	msgs, err := cached(ctx, s, messagesKey(notificationID), func() (*[]Message, error) {
		m, err := s.Storage.FindMessages(ctx, notificationID)
		return &m, err
	})
	if err != nil {
		return nil, err
	}
	return *msgs, nil
}

// FindGateway caches gateway configs unless they carry an SMTP password;
// credentials are always read from the backend.
func (s *CachedStorage) FindGateway(ctx context.Context, id string) (*GatewayConfig, error) {
	return cachedIf(ctx, s, gatewayKey(id), func() (*GatewayConfig, error) {
		return s.Storage.FindGateway(ctx, id)
	}, func(g *GatewayConfig) bool {
		return g.SMTP.Password == ""
	})
}

func (s *CachedStorage) FindLanguage(ctx context.Context, messageID, code string) (*Language, error) {
	return cached(ctx, s, languageKey(messageID, code), func() (*Language, error) {
		return s.Storage.FindLanguage(ctx, messageID, code)
	})
}

func (s *CachedStorage) FindAttachmentPathsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return s.Storage.FindAttachmentPathsByIDs(ctx, ids)
}

// Invalidate drops the cached notification and its message list. Language
// entries expire with the ttl.
func (s *CachedStorage) Invalidate(ctx context.Context, notificationID string, gatewayIDs ...string) error {
	keys := []string{notificationKey(notificationID), messagesKey(notificationID)}
	for _, id := range gatewayIDs {
		keys = append(keys, gatewayKey(id))
	}
	return s.cache.Delete(ctx, keys...)
}

func cached[T any](ctx context.Context, s *CachedStorage, key string, load func() (*T, error)) (*T, error) {
	return cachedIf(ctx, s, key, load, nil)
}

// cachedIf stores loaded values only when storable is nil or returns true.
func cachedIf[T any](ctx context.Context, s *CachedStorage, key string, load func() (*T, error), storable func(*T) bool) (*T, error) {
	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return &v, nil
		}
		s.logger.LogAttrs(ctx, slog.LevelWarn, "dropping undecodable cache entry", slog.String("key", key))
	case !errors.Is(err, cache.ErrMiss):
		s.logger.LogAttrs(ctx, slog.LevelWarn, "cache read failed", slog.String("key", key), logger.Error(err))
	}

	v, err := load()
	if err != nil {
		return nil, err
	}
	if storable != nil && !storable(v) {
		return v, nil
	}

	if raw, err := json.Marshal(v); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "cache write failed", slog.String("key", key), logger.Error(err))
		}
	}
	return v, nil
}
