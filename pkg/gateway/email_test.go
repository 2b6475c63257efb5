package gateway_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifycenter/pkg/attachments"
	"github.com/dmitrymomot/notifycenter/pkg/email"
	"github.com/dmitrymomot/notifycenter/pkg/gateway"
	"github.com/dmitrymomot/notifycenter/pkg/logger"
	"github.com/dmitrymomot/notifycenter/pkg/notification"
	"github.com/dmitrymomot/notifycenter/pkg/tokens"
)

// recordingSender keeps every email it is asked to send.
type recordingSender struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
	err  error
}

func (s *recordingSender) SendEmail(_ context.Context, p email.SendEmailParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, p)
	return s.err
}

func (s *recordingSender) last(t *testing.T) email.SendEmailParams {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sent)
	return s.sent[len(s.sent)-1]
}

var cfg = gateway.Config{
	DefaultSenderName:    "Site Admin",
	DefaultSenderAddress: "admin@example.com",
	BaseURL:              "https://example.com/",
	DefaultLanguage:      "en",
}

func seed(t *testing.T, langs ...notification.Language) *notification.MemoryStorage {
	t.Helper()
	ctx := context.Background()
	s := notification.NewMemoryStorage()
	require.NoError(t, s.SaveGateway(ctx, notification.GatewayConfig{ID: "mail", Type: notification.GatewayEmail}))
	require.NoError(t, s.SaveNotification(ctx, notification.Notification{ID: "reg", Type: "member_registration"}))
	require.NoError(t, s.SaveMessage(ctx, notification.Message{ID: "m", NotificationID: "reg", GatewayID: "mail", Published: true}))
	for _, l := range langs {
		l.MessageID = "m"
		require.NoError(t, s.SaveLanguage(ctx, l))
	}
	return s
}

func request(toks tokens.Tokens, lang string) notification.SendRequest {
	return notification.SendRequest{
		Notification: notification.Notification{ID: "reg", Type: "member_registration"},
		Gateway:      notification.GatewayConfig{ID: "mail", Type: notification.GatewayEmail},
		Message:      notification.Message{ID: "m", NotificationID: "reg", GatewayID: "mail", Published: true, EmailPriority: 2},
		Tokens:       toks,
		Language:     lang,
	}
}

func TestEmail_Send(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := seed(t,
		notification.Language{
			ID: "en", Language: "en", Fallback: true,
			Recipients:   "##member_email##, Admin <admin@example.com>",
			RecipientCC:  "not-an-address",
			RecipientBCC: "audit@example.com",
			Subject:      "Welcome\n##member_firstname##",
			Text:         "Hi ##member_firstname##, see <a href=\"news/today.html\">news</a>",
			Mode:         notification.ModeTextAndHTML,
			HTML:         `<p>Hello <b>##member_firstname##</b></p><img src="/files/logo.png">`,
		},
		notification.Language{
			ID: "de", Language: "de", Recipients: "##member_email##",
			SenderName: "##domain## Team", SenderAddress: "team@example.de",
			Subject: "Willkommen", Text: "Hallo",
		},
	)

	toks := tokens.NewBuilder().
		Set("member_email", "ann@example.com").
		Set("member_firstname", "<i>Ann</i>").
		Set("domain", "example.de").
		Build()

	t.Run("fallback variant with html", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		gw := gateway.NewEmail(cfg, store, sender, gateway.WithEmailLogger(logger.Discard()))

		progress := notification.NewProgress(nil)
		req := request(toks, "fr")
		req.Progress = progress
		require.NoError(t, gw.Send(ctx, req))
		assert.Equal(t, notification.StatePayloadAssembled, progress.Current())

		p := sender.last(t)
		assert.Equal(t, "admin@example.com", p.From)
		assert.Equal(t, "Site Admin", p.FromName)
		assert.Equal(t, "Welcome Ann", p.Subject)
		assert.Equal(t, []string{"ann@example.com", "Admin <admin@example.com>"}, p.To)
		assert.Nil(t, p.Cc)
		assert.Equal(t, []string{"audit@example.com"}, p.Bcc)
		assert.Equal(t, 2, p.Priority)
		assert.Equal(t, "member_registration", p.Tag)
		assert.True(t, p.Override.IsZero())

		assert.Contains(t, p.BodyText, "Hi Ann")
		assert.Contains(t, p.BodyText, `href="https://example.com/news/today.html"`)

		assert.Contains(t, p.BodyHTML, "<!DOCTYPE html>")
		assert.Contains(t, p.BodyHTML, "<title>Welcome Ann</title>")
		assert.Contains(t, p.BodyHTML, "<b><i>Ann</i></b>")
		assert.Contains(t, p.BodyHTML, `src="https://example.com/files/logo.png"`)
	})

	t.Run("exact variant text only", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		gw := gateway.NewEmail(cfg, store, sender)

		require.NoError(t, gw.Send(ctx, request(toks, "DE")))

		p := sender.last(t)
		assert.Equal(t, "team@example.de", p.From)
		assert.Equal(t, "example.de Team", p.FromName)
		assert.Equal(t, "Willkommen", p.Subject)
		assert.Empty(t, p.BodyHTML)
	})

	t.Run("empty language uses default", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		gw := gateway.NewEmail(gateway.Config{DefaultLanguage: "de", DefaultSenderAddress: "a@example.com"}, store, sender)

		require.NoError(t, gw.Send(ctx, request(toks, "")))
		assert.Equal(t, "Willkommen", sender.last(t).Subject)
	})

	t.Run("smtp override travels with the email", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		gw := gateway.NewEmail(cfg, store, sender)

		req := request(toks, "en")
		req.Gateway.SMTP = notification.SMTPSettings{Host: "smtp.eu.example.com", Port: 465, User: "u", Password: "p", Encryption: "ssl"}
		require.NoError(t, gw.Send(ctx, req))

		assert.Equal(t, email.SMTPOverride{Host: "smtp.eu.example.com", Port: 465, User: "u", Password: "p", Encryption: "ssl"},
			sender.last(t).Override)
	})
}

func TestEmail_Send_Failures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("language missing", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		store := seed(t, notification.Language{ID: "de", Language: "de", Recipients: "a@example.com"})
		gw := gateway.NewEmail(cfg, store, sender)

		progress := notification.NewProgress(nil)
		req := request(tokens.Empty(), "en")
		req.Progress = progress
		err := gw.Send(ctx, req)
		assert.ErrorIs(t, err, notification.ErrLanguageNotFound)
		assert.Equal(t, notification.StateRequested, progress.Current())
		assert.Empty(t, sender.sent)
	})

	t.Run("no recipients", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		store := seed(t, notification.Language{ID: "en", Language: "en", Fallback: true, Recipients: "##member_email##"})
		gw := gateway.NewEmail(cfg, store, sender)

		err := gw.Send(ctx, request(tokens.Empty(), "en"))
		assert.ErrorIs(t, err, notification.ErrNoRecipients)
		assert.Empty(t, sender.sent)
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("connection refused")
		sender := &recordingSender{err: boom}
		store := seed(t, notification.Language{ID: "en", Language: "en", Fallback: true, Recipients: "a@example.com", Subject: "s"})
		gw := gateway.NewEmail(cfg, store, sender)

		err := gw.Send(ctx, request(tokens.Empty(), "en"))
		assert.ErrorIs(t, err, notification.ErrTransportFailure)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unknown layout", func(t *testing.T) {
		t.Parallel()
		sender := &recordingSender{}
		store := seed(t, notification.Language{
			ID: "en", Language: "en", Fallback: true, Recipients: "a@example.com",
			Mode: notification.ModeTextAndHTML, HTML: "<p>x</p>",
		})
		gw := gateway.NewEmail(cfg, store, sender)

		req := request(tokens.Empty(), "en")
		req.Message.EmailTemplate = "mail_missing"
		assert.Error(t, gw.Send(ctx, req))
		assert.Empty(t, sender.sent)
	})
}

func TestEmail_Send_Attachments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "files"), 0o755))
	for _, name := range []string{"invoice.pdf", "terms.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, "files", name), []byte("%PDF"), 0o644))
	}

	termsID := uuid.New()
	store := seed(t, notification.Language{
		ID: "en", Language: "en", Fallback: true, Recipients: "a@example.com", Subject: "s",
		AttachmentTokens: "##invoice##, missing",
		Attachments:      []uuid.UUID{termsID, uuid.New()},
	})
	require.NoError(t, store.SaveAttachmentPath(ctx, termsID, "files/terms.pdf"))

	resolver, err := attachments.NewResolver(root, store)
	require.NoError(t, err)

	sender := &recordingSender{}
	gw := gateway.NewEmail(cfg, store, sender, gateway.WithAttachments(resolver))

	toks := tokens.NewBuilder().Set("invoice", "files/invoice.pdf").Build()
	require.NoError(t, gw.Send(ctx, request(toks, "en")))

	assert.Equal(t, []string{
		filepath.Join(root, "files", "invoice.pdf"),
		filepath.Join(root, "files", "terms.pdf"),
	}, sender.last(t).Attachments)
}
