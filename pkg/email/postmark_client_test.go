package email_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifycenter/pkg/email"
)

func TestNewPostmarkClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  email.Config
		wantErr string
	}{
		{
			name: "valid tokens",
			config: email.Config{
				PostmarkServerToken:  "test-server-token",
				PostmarkAccountToken: "test-account-token",
			},
		},
		{
			name:    "empty server token",
			config:  email.Config{PostmarkAccountToken: "test-account-token"},
			wantErr: "PostmarkServerToken is required",
		},
		{
			name:    "empty account token",
			config:  email.Config{PostmarkServerToken: "test-server-token"},
			wantErr: "PostmarkAccountToken is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := email.NewPostmarkClient(tt.config)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, client)
				return
			}
			assert.Nil(t, client)
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMustNewPostmarkClient_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		email.MustNewPostmarkClient(email.Config{})
	})
}

func TestPostmarkClient_SendEmail_ValidationError(t *testing.T) {
	t.Parallel()

	client, err := email.NewPostmarkClient(email.Config{
		PostmarkServerToken:  "test-server-token",
		PostmarkAccountToken: "test-account-token",
	})
	require.NoError(t, err)

	params := validParams()
	params.Subject = ""

	err = client.SendEmail(context.Background(), params)
	assert.ErrorIs(t, err, email.ErrInvalidParams)
}
