// Package pgstore keeps the notification configuration in PostgreSQL.
//
// The schema ships as goose migrations embedded in Migrations and is applied
// with pg.Migrate:
//
//	if err := pg.Migrate(ctx, pool, cfg, pgstore.Migrations, pgstore.MigrationsDir, log); err != nil {
//		return err
//	}
//	store := pgstore.New(pool)
package pgstore

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/notifycenter/pkg/notification"
	"github.com/dmitrymomot/notifycenter/pkg/pg"
)

// Migrations holds the schema of the store.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations passed to pg.Migrate.
const MigrationsDir = "migrations"

const fallbackConstraint = "languages_single_fallback_idx"

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements notification.Storage and notification.Writer on PostgreSQL.
type Store struct {
	db DB
}

var (
	_ notification.Storage = (*Store)(nil)
	_ notification.Writer  = (*Store)(nil)
)

func New(db DB) *Store {
	return &Store{db: db}
}

const selectNotification = `SELECT id, title, type FROM notifications WHERE id = $1`

func (s *Store) FindNotification(ctx context.Context, id string) (*notification.Notification, error) {
	var n notification.Notification
	err := s.db.QueryRow(ctx, selectNotification, id).Scan(&n.ID, &n.Title, &n.Type)
	if err != nil {
		return nil, mapError(err, "notification", id)
	}
	return &n, nil
}

const selectMessages = `
SELECT id, notification_id, gateway_id, title, published, email_template, email_priority
FROM messages
WHERE notification_id = $1
ORDER BY position`

func (s *Store) FindMessages(ctx context.Context, notificationID string) ([]notification.Message, error) {
	rows, err := s.db.Query(ctx, selectMessages, notificationID)
	if err != nil {
		return nil, mapError(err, "messages of notification", notificationID)
	}
	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (notification.Message, error) {
		var m notification.Message
		err := row.Scan(&m.ID, &m.NotificationID, &m.GatewayID, &m.Title, &m.Published, &m.EmailTemplate, &m.EmailPriority)
		return m, err
	})
	if err != nil {
		return nil, mapError(err, "messages of notification", notificationID)
	}
	if msgs == nil {
		msgs = []notification.Message{}
	}
	return msgs, nil
}

const selectGateway = `
SELECT id, title, type, smtp_host, smtp_port, smtp_user, smtp_password, smtp_encryption
FROM gateways WHERE id = $1`

func (s *Store) FindGateway(ctx context.Context, id string) (*notification.GatewayConfig, error) {
	var g notification.GatewayConfig
	err := s.db.QueryRow(ctx, selectGateway, id).Scan(
		&g.ID, &g.Title, &g.Type,
		&g.SMTP.Host, &g.SMTP.Port, &g.SMTP.User, &g.SMTP.Password, &g.SMTP.Encryption,
	)
	if err != nil {
		return nil, mapError(err, "gateway", id)
	}
	return &g, nil
}

// An exact language match sorts before the fallback variant.
const selectLanguage = `
SELECT id, message_id, language, fallback, recipients, recipient_cc, recipient_bcc,
       sender_name, sender_address, reply_to, subject, mode, text_body, html_body,
       attachment_tokens, attachments
FROM languages
WHERE message_id = $1 AND (language_key = $2 OR fallback)
ORDER BY (language_key = $2) DESC
LIMIT 1`

func (s *Store) FindLanguage(ctx context.Context, messageID, code string) (*notification.Language, error) {
	var l notification.Language
	err := s.db.QueryRow(ctx, selectLanguage, messageID, notification.CanonicalLanguage(code)).Scan(
		&l.ID, &l.MessageID, &l.Language, &l.Fallback,
		&l.Recipients, &l.RecipientCC, &l.RecipientBCC,
		&l.SenderName, &l.SenderAddress, &l.ReplyTo, &l.Subject, &l.Mode,
		&l.Text, &l.HTML, &l.AttachmentTokens, &l.Attachments,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, notification.ErrLanguageNotFound
		}
		return nil, mapError(err, "language of message", messageID)
	}
	return &l, nil
}

const selectFiles = `SELECT id, path FROM files WHERE id = ANY($1)`

func (s *Store) FindAttachmentPathsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.db.Query(ctx, selectFiles, ids)
	if err != nil {
		return nil, mapError(err, "files", "")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   uuid.UUID
			path string
		)
		if err := rows.Scan(&id, &path); err != nil {
			return nil, mapError(err, "files", "")
		}
		out[id] = path
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "files", "")
	}
	return out, nil
}

const upsertNotification = `
INSERT INTO notifications (id, title, type) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, type = EXCLUDED.type, updated_at = now()`

func (s *Store) SaveNotification(ctx context.Context, n notification.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, upsertNotification, n.ID, n.Title, n.Type)
	return mapError(err, "notification", n.ID)
}

const upsertGateway = `
INSERT INTO gateways (id, title, type, smtp_host, smtp_port, smtp_user, smtp_password, smtp_encryption)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    type = EXCLUDED.type,
    smtp_host = EXCLUDED.smtp_host,
    smtp_port = EXCLUDED.smtp_port,
    smtp_user = EXCLUDED.smtp_user,
    smtp_password = EXCLUDED.smtp_password,
    smtp_encryption = EXCLUDED.smtp_encryption,
    updated_at = now()`

func (s *Store) SaveGateway(ctx context.Context, g notification.GatewayConfig) error {
	if err := g.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, upsertGateway,
		g.ID, g.Title, string(g.Type),
		g.SMTP.Host, g.SMTP.Port, g.SMTP.User, g.SMTP.Password, g.SMTP.Encryption,
	)
	return mapError(err, "gateway", g.ID)
}

const upsertMessage = `
INSERT INTO messages (id, notification_id, gateway_id, title, published, email_template, email_priority)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    notification_id = EXCLUDED.notification_id,
    gateway_id = EXCLUDED.gateway_id,
    title = EXCLUDED.title,
    published = EXCLUDED.published,
    email_template = EXCLUDED.email_template,
    email_priority = EXCLUDED.email_priority,
    updated_at = now()`

func (s *Store) SaveMessage(ctx context.Context, m notification.Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, upsertMessage,
		m.ID, m.NotificationID, m.GatewayID, m.Title, m.Published, m.EmailTemplate, m.EmailPriority,
	)
	return mapError(err, "message", m.ID)
}

const upsertLanguage = `
INSERT INTO languages (
    id, message_id, language, language_key, fallback, recipients, recipient_cc, recipient_bcc,
    sender_name, sender_address, reply_to, subject, mode, text_body, html_body,
    attachment_tokens, attachments
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
ON CONFLICT (id) DO UPDATE SET
    message_id = EXCLUDED.message_id,
    language = EXCLUDED.language,
    language_key = EXCLUDED.language_key,
    fallback = EXCLUDED.fallback,
    recipients = EXCLUDED.recipients,
    recipient_cc = EXCLUDED.recipient_cc,
    recipient_bcc = EXCLUDED.recipient_bcc,
    sender_name = EXCLUDED.sender_name,
    sender_address = EXCLUDED.sender_address,
    reply_to = EXCLUDED.reply_to,
    subject = EXCLUDED.subject,
    mode = EXCLUDED.mode,
    text_body = EXCLUDED.text_body,
    html_body = EXCLUDED.html_body,
    attachment_tokens = EXCLUDED.attachment_tokens,
    attachments = EXCLUDED.attachments,
    updated_at = now()`

func (s *Store) SaveLanguage(ctx context.Context, l notification.Language) error {
	if err := l.Validate(); err != nil {
		return err
	}
	mode := l.Mode
	if mode == "" {
		mode = notification.ModeTextOnly
	}
	attachments := l.Attachments
	if attachments == nil {
		attachments = []uuid.UUID{}
	}

	_, err := s.db.Exec(ctx, upsertLanguage,
		l.ID, l.MessageID, l.Language, notification.CanonicalLanguage(l.Language), l.Fallback,
		l.Recipients, l.RecipientCC, l.RecipientBCC,
		l.SenderName, l.SenderAddress, l.ReplyTo, l.Subject, string(mode),
		l.Text, l.HTML, l.AttachmentTokens, attachments,
	)
	return mapError(err, "language of message", l.MessageID)
}

const upsertFile = `
INSERT INTO files (id, path) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET path = EXCLUDED.path`

func (s *Store) SaveAttachmentPath(ctx context.Context, id uuid.UUID, path string) error {
	if id == uuid.Nil || path == "" {
		return fmt.Errorf("%w: attachment needs id and path", notification.ErrInvalidModel)
	}
	_, err := s.db.Exec(ctx, upsertFile, id, path)
	return mapError(err, "file", id.String())
}

// mapError translates PostgreSQL failures into the notification error set.
func mapError(err error, what, id string) error {
	switch {
	case err == nil:
		return nil
	case pg.IsNotFoundError(err):
		return fmt.Errorf("%w: %s %q", notification.ErrNotFound, what, id)
	case pg.IsForeignKeyViolationError(err):
		return fmt.Errorf("%w: %s %q references a missing row: %w", notification.ErrNotFound, what, id, err)
	case pg.IsDuplicateKeyError(err) && pg.ConstraintName(err) == fallbackConstraint:
		return fmt.Errorf("%w: %s %q", notification.ErrDuplicateFallback, what, id)
	}
	return errors.Join(fmt.Errorf("%s %q", what, id), err)
}
