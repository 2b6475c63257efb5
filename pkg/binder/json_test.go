package binder_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifycenter/pkg/binder"
)

var errOddValue = errors.New("odd value")

type oddOnly int

func (o *oddOnly) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || (data[len(data)-1]-'0')%2 == 0 {
		return errOddValue
	}
	*o = oddOnly(data[len(data)-1] - '0')
	return nil
}

type payload struct {
	Language string            `json:"language"`
	Tokens   map[string]string `json:"tokens"`
	Odd      oddOnly           `json:"odd,omitempty"`
}

func newRequest(contentType, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/notifications/n/dispatch", bytes.NewBufferString(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("valid body", func(t *testing.T) {
		t.Parallel()
		var p payload
		err := binder.JSON()(newRequest("application/json", `{"language":"de","tokens":{"name":"Jane"}}`), &p)

		require.NoError(t, err)
		assert.Equal(t, "de", p.Language)
		assert.Equal(t, map[string]string{"name": "Jane"}, p.Tokens)
	})

	t.Run("content type with charset", func(t *testing.T) {
		t.Parallel()
		var p payload
		err := binder.JSON()(newRequest("application/json; charset=utf-8", `{"language":"fr"}`), &p)

		require.NoError(t, err)
		assert.Equal(t, "fr", p.Language)
	})

	tests := []struct {
		name        string
		contentType string
		body        string
		opts        []binder.JSONOption
		wantErr     error
	}{
		{"missing content type", "", `{}`, nil, binder.ErrMissingContentType},
		{"wrong content type", "text/plain", `{}`, nil, binder.ErrUnsupportedMediaType},
		{"broken json", "application/json", `{"language":`, nil, binder.ErrFailedToParseJSON},
		{"unknown field", "application/json", `{"recipients":"x"}`, nil, binder.ErrFailedToParseJSON},
		{"trailing data", "application/json", `{} {}`, nil, binder.ErrFailedToParseJSON},
		{"empty body not allowed", "application/json", ``, nil, binder.ErrFailedToParseJSON},
		{"too large", "application/json", `{"language":"` + strings.Repeat("a", 64) + `"}`,
			[]binder.JSONOption{binder.WithMaxSize(32)}, binder.ErrBodyTooLarge},
		{"value unmarshaler error kept", "application/json", `{"odd":4}`, nil, errOddValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var p payload
			err := binder.JSON(tt.opts...)(newRequest(tt.contentType, tt.body), &p)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("value unmarshaler error also wraps parse error", func(t *testing.T) {
		t.Parallel()
		var p payload
		err := binder.JSON()(newRequest("application/json", `{"odd":2}`), &p)

		assert.ErrorIs(t, err, binder.ErrFailedToParseJSON)
	})

	t.Run("empty body allowed", func(t *testing.T) {
		t.Parallel()
		p := payload{Language: "en"}

		require.NoError(t, binder.JSON(binder.AllowEmptyBody())(newRequest("", ""), &p))
		require.NoError(t, binder.JSON(binder.AllowEmptyBody())(newRequest("application/json", "  "), &p))
		assert.Equal(t, "en", p.Language)
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req := newRequest("application/json", `{}`).WithContext(ctx)

		var p payload
		err := binder.JSON()(req, &p)

		assert.ErrorIs(t, err, binder.ErrFailedToParseJSON)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
