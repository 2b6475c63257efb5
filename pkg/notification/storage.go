package notification

import (
	"context"

	"github.com/google/uuid"
)

// LanguageFinder resolves the variant of a message for a language code, using
// the fallback variant when there is no exact match. It returns
// ErrLanguageNotFound when neither exists.
type LanguageFinder interface {
	FindLanguage(ctx context.Context, messageID, code string) (*Language, error)
}

// Storage is the read side of the notification configuration.
// Lookups of unknown ids return ErrNotFound.
type Storage interface {
	LanguageFinder

	FindNotification(ctx context.Context, id string) (*Notification, error)
	// FindMessages returns every message of a notification, published or not.
	FindMessages(ctx context.Context, notificationID string) ([]Message, error)
	FindGateway(ctx context.Context, id string) (*GatewayConfig, error)
	// FindAttachmentPathsByIDs maps file ids to root-relative paths; unknown ids are omitted.
	FindAttachmentPathsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Writer is the write side used by seed loaders and admin tooling.
// Saves are upserts keyed by id.
type Writer interface {
	SaveNotification(ctx context.Context, n Notification) error
	SaveGateway(ctx context.Context, g GatewayConfig) error
	SaveMessage(ctx context.Context, m Message) error
	// SaveLanguage returns ErrDuplicateFallback when another variant of the
	// same message is already the fallback.
	SaveLanguage(ctx context.Context, l Language) error
	SaveAttachmentPath(ctx context.Context, id uuid.UUID, path string) error
}
