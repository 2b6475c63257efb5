package dispatchapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifycenter/pkg/dispatchapi"
	"github.com/dmitrymomot/notifycenter/pkg/logger"
	"github.com/dmitrymomot/notifycenter/pkg/notification"
)

type captured struct {
	mu   sync.Mutex
	reqs []notification.SendRequest
}

func (c *captured) gateway() notification.Gateway {
	return notification.GatewayFunc(func(_ context.Context, req notification.SendRequest) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.reqs = append(c.reqs, req)
		return nil
	})
}

func newAPI(t *testing.T, opts ...dispatchapi.Option) (http.Handler, *captured) {
	t.Helper()
	ctx := context.Background()
	store := notification.NewMemoryStorage()
	require.NoError(t, store.SaveGateway(ctx, notification.GatewayConfig{ID: "mail", Type: notification.GatewayEmail}))
	require.NoError(t, store.SaveNotification(ctx, notification.Notification{ID: "reg", Type: "member_registration"}))
	require.NoError(t, store.SaveMessage(ctx, notification.Message{ID: "m", NotificationID: "reg", GatewayID: "mail", Published: true}))

	c := &captured{}
	manager := notification.NewManager(store,
		notification.WithGateway(notification.GatewayEmail, c.gateway()),
		notification.WithManagerLogger(logger.Discard()),
	)
	return dispatchapi.Router(manager, opts...), c
}

func post(h http.Handler, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  *notification.Result     `json:"data"`
	Error *dispatchapi.ErrorDetail `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	t.Run("sent with tokens and language", func(t *testing.T) {
		t.Parallel()
		h, c := newAPI(t)

		rec := post(h, "/notifications/reg/dispatch", "application/json",
			`{"tokens":{"member_email":"ann@example.com","member_age":42,"vip":true,"channels":["News","Events"],"nick":null},"language":"de_CH"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(dispatchapi.RequestIDHeader))
		env := decode(t, rec)
		require.NotNil(t, env.Data)
		assert.Equal(t, notification.StatusSent, env.Data.Status)
		require.Len(t, env.Data.Deliveries, 1)

		require.Len(t, c.reqs, 1)
		req := c.reqs[0]
		assert.Equal(t, "de_CH", req.Language)
		assert.Equal(t, "ann@example.com", req.Tokens.Lookup("member_email"))
		assert.Equal(t, "42", req.Tokens.Lookup("member_age"))
		assert.Equal(t, "true", req.Tokens.Lookup("vip"))
		v, ok := req.Tokens.Get("channels")
		require.True(t, ok)
		assert.Equal(t, []string{"News", "Events"}, v.List())
		assert.True(t, req.Tokens.Has("nick"))
	})

	t.Run("empty body dispatches without tokens", func(t *testing.T) {
		t.Parallel()
		h, c := newAPI(t)

		rec := post(h, "/notifications/reg/dispatch", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, c.reqs, 1)
		assert.Equal(t, 0, c.reqs[0].Tokens.Len())
	})

	t.Run("unknown notification is skipped", func(t *testing.T) {
		t.Parallel()
		h, c := newAPI(t)

		rec := post(h, "/notifications/nope/dispatch", "application/json", `{}`)
		require.Equal(t, http.StatusOK, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, notification.StatusSkipped, env.Data.Status)
		assert.Empty(t, c.reqs)
	})

	t.Run("incoming request id is echoed", func(t *testing.T) {
		t.Parallel()
		h, _ := newAPI(t)
		req := httptest.NewRequest(http.MethodPost, "/notifications/reg/dispatch", nil)
		req.Header.Set(dispatchapi.RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "req-42", rec.Header().Get(dispatchapi.RequestIDHeader))
	})
}

func TestDispatch_BadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
		code        string
	}{
		{"wrong media type", "text/plain", `tokens`, http.StatusUnsupportedMediaType, "unsupported_media_type"},
		{"body without content type", "", `{"tokens":{}}`, http.StatusUnsupportedMediaType, "unsupported_media_type"},
		{"broken json", "application/json", `{"tokens":`, http.StatusBadRequest, "invalid_body"},
		{"unknown field", "application/json", `{"recipients":"x"}`, http.StatusBadRequest, "invalid_body"},
		{"nested object token", "application/json", `{"tokens":{"a":{"b":1}}}`, http.StatusBadRequest, "invalid_body"},
		{"trailing data", "application/json", `{} {}`, http.StatusBadRequest, "invalid_body"},
		{"empty token name", "application/json", `{"tokens":{"":"x"}}`, http.StatusUnprocessableEntity, "validation_error"},
		{"too large", "application/json", `{"language":"` + strings.Repeat("a", dispatchapi.MaxBodySize) + `"}`, http.StatusRequestEntityTooLarge, "body_too_large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, c := newAPI(t)

			rec := post(h, "/notifications/reg/dispatch", tt.contentType, tt.body)
			require.Equal(t, tt.status, rec.Code)
			env := decode(t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Empty(t, c.reqs)
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	h, _ := newAPI(t,
		dispatchapi.WithLogger(logger.Discard()),
		dispatchapi.WithReadinessCheck("postgres", func(context.Context) error { return errors.New("down") }),
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
