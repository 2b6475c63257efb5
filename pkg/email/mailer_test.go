package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifycenter/pkg/email"
)

func validParams() email.SendEmailParams {
	return email.SendEmailParams{
		From:     "noreply@example.com",
		FromName: "Example",
		To:       []string{"user@example.com"},
		Subject:  "Test Subject",
		BodyText: "Test body",
		BodyHTML: "<p>Test body</p>",
	}
}

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(p *email.SendEmailParams)
		wantErr bool
		field   string
	}{
		{
			name:   "valid params",
			modify: func(p *email.SendEmailParams) {},
		},
		{
			name: "friendly recipients and reply-to",
			modify: func(p *email.SendEmailParams) {
				p.To = []string{"Jane Doe <jane@example.com>"}
				p.Cc = []string{"cc@example.com"}
				p.ReplyTo = "Support <support@example.com>"
				p.Priority = email.PriorityHighest
			},
		},
		{
			name:    "invalid from",
			modify:  func(p *email.SendEmailParams) { p.From = "nobody" },
			wantErr: true,
			field:   "from",
		},
		{
			name:    "no recipients",
			modify:  func(p *email.SendEmailParams) { p.To = nil },
			wantErr: true,
			field:   "to",
		},
		{
			name:    "invalid bcc",
			modify:  func(p *email.SendEmailParams) { p.Bcc = []string{"broken"} },
			wantErr: true,
			field:   "bcc",
		},
		{
			name:    "empty subject",
			modify:  func(p *email.SendEmailParams) { p.Subject = " " },
			wantErr: true,
			field:   "subject",
		},
		{
			name:    "priority out of range",
			modify:  func(p *email.SendEmailParams) { p.Priority = 7 },
			wantErr: true,
			field:   "priority",
		},
		{
			name: "override with unknown encryption",
			modify: func(p *email.SendEmailParams) {
				p.Override = email.SMTPOverride{Host: "smtp.example.com", Encryption: "starttls"}
			},
			wantErr: true,
			field:   "override.encryption",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := validParams()
			tt.modify(&p)
			err := p.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, email.ErrInvalidParams)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	sender, err := email.New(email.Config{Transport: email.TransportDev, DevOutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &email.DevSender{}, sender)

	sender, err = email.New(email.Config{SMTPHost: "localhost", SMTPPort: 25})
	require.NoError(t, err)
	assert.NotNil(t, sender)

	_, err = email.New(email.Config{Transport: email.TransportPostmark})
	assert.ErrorIs(t, err, email.ErrInvalidConfig)

	_, err = email.New(email.Config{Transport: "pigeon"})
	assert.ErrorIs(t, err, email.ErrUnknownTransport)
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("writes bodies and envelope", func(t *testing.T) {
		t.Parallel()

		tempDir := t.TempDir()
		sender := email.NewDevSender(tempDir)

		params := validParams()
		params.Tag = "welcome"
		params.Cc = []string{"cc@example.com"}
		params.Attachments = []string{"/var/files/terms.pdf"}
		params.Override = email.SMTPOverride{Host: "smtp.example.com", Port: 465, Encryption: email.EncryptionSSL}

		require.NoError(t, sender.SendEmail(ctx, params))

		files, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		assert.Len(t, files, 3)

		var jsonFile string
		for _, file := range files {
			assert.Contains(t, file.Name(), "welcome")
			switch {
			case strings.HasSuffix(file.Name(), ".json"):
				jsonFile = filepath.Join(tempDir, file.Name())
			case strings.HasSuffix(file.Name(), ".html"):
				content, err := os.ReadFile(filepath.Join(tempDir, file.Name()))
				require.NoError(t, err)
				assert.Equal(t, "<p>Test body</p>", string(content))
			case strings.HasSuffix(file.Name(), ".txt"):
				content, err := os.ReadFile(filepath.Join(tempDir, file.Name()))
				require.NoError(t, err)
				assert.Equal(t, "Test body", string(content))
			}
		}
		require.NotEmpty(t, jsonFile)

		raw, err := os.ReadFile(jsonFile)
		require.NoError(t, err)
		var metadata map[string]any
		require.NoError(t, json.Unmarshal(raw, &metadata))
		assert.Equal(t, "noreply@example.com", metadata["from"])
		assert.Equal(t, []any{"user@example.com"}, metadata["to"])
		assert.Equal(t, []any{"cc@example.com"}, metadata["cc"])
		assert.Equal(t, "Test Subject", metadata["subject"])
		assert.Equal(t, []any{"/var/files/terms.pdf"}, metadata["attachments"])
		override, ok := metadata["smtp_override"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "smtp.example.com", override["host"])
		assert.NotContains(t, override, "password")
	})

	t.Run("text only without tag uses subject", func(t *testing.T) {
		t.Parallel()

		tempDir := t.TempDir()
		sender := email.NewDevSender(tempDir)

		params := validParams()
		params.Subject = "Password Reset!"
		params.BodyHTML = ""

		require.NoError(t, sender.SendEmail(ctx, params))

		files, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		assert.Len(t, files, 2)
		for _, file := range files {
			assert.Contains(t, file.Name(), "password_reset")
		}
	})

	t.Run("validation error writes nothing", func(t *testing.T) {
		t.Parallel()

		tempDir := t.TempDir()
		sender := email.NewDevSender(tempDir)

		params := validParams()
		params.To = nil

		err := sender.SendEmail(ctx, params)
		assert.ErrorIs(t, err, email.ErrInvalidParams)

		files, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("unwritable directory", func(t *testing.T) {
		t.Parallel()

		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
		sender := email.NewDevSender(filepath.Join(blocker, "sub"))

		err := sender.SendEmail(ctx, validParams())
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	})
}
