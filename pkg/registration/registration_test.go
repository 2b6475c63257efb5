package registration_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifycenter/pkg/notification"
	"github.com/dmitrymomot/notifycenter/pkg/registration"
	"github.com/dmitrymomot/notifycenter/pkg/tokens"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) DispatchLanguage(ctx context.Context, id string, toks tokens.Tokens, lang string) notification.Result {
	args := m.Called(ctx, id, toks, lang)
	return args.Get(0).(notification.Result)
}

type channelsFunc func(ctx context.Context, ids []string) ([]string, error)

func (f channelsFunc) ChannelTitles(ctx context.Context, ids []string) ([]string, error) {
	return f(ctx, ids)
}

var site = registration.Config{
	AdminEmail: "admin@example.com",
	Host:       "example.com",
	BaseURL:    "https://example.com/",
}

func TestActivationLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		request      string
		disableAlias bool
		want         string
	}{
		{"clean url", "register.html", false, "https://example.com/register.html?token=abc"},
		{"query in request", "index.php?id=5", false, "https://example.com/index.php?id=5&token=abc"},
		{"alias disabled", "index.php/register", true, "https://example.com/index.php/register&token=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, registration.ActivationLink("https://example.com/", tt.request, "abc", tt.disableAlias))
		})
	}
}

func TestMailer_Tokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	data := registration.Data{
		Activation:  "act-1",
		RequestPath: "register.html",
		Fields:      map[string]string{"firstname": "ann", "email": "ann@example.com"},
		Newsletters: []string{"1", "3"},
	}

	t.Run("without newsletter support", func(t *testing.T) {
		t.Parallel()
		toks := registration.NewMailer(site, &MockDispatcher{}).Tokens(ctx, data)

		assert.Equal(t, "admin@example.com", toks.Lookup("admin_email"))
		assert.Equal(t, "example.com", toks.Lookup("domain"))
		assert.Equal(t, "https://example.com/register.html?token=act-1", toks.Lookup("link"))
		assert.Equal(t, "ann", toks.Lookup("member_firstname"))
		assert.Equal(t, "ann@example.com", toks.Lookup("member_email"))
		assert.False(t, toks.Has("member_newsletter"))
	})

	t.Run("formatted fields and channels", func(t *testing.T) {
		t.Parallel()
		m := registration.NewMailer(site, &MockDispatcher{},
			registration.WithFieldFormatter(func(field, v string) string {
				if field == "firstname" {
					return strings.ToUpper(v)
				}
				return v
			}),
			registration.WithChannels(channelsFunc(func(_ context.Context, ids []string) ([]string, error) {
				assert.Equal(t, []string{"1", "3"}, ids)
				return []string{"News", "Events"}, nil
			})),
		)
		toks := m.Tokens(ctx, data)

		assert.Equal(t, "ANN", toks.Lookup("member_firstname"))
		assert.Equal(t, "News\nEvents", toks.Lookup("member_newsletter"))
	})

	t.Run("channel lookup failure leaves empty newsletter", func(t *testing.T) {
		t.Parallel()
		m := registration.NewMailer(site, &MockDispatcher{},
			registration.WithChannels(channelsFunc(func(context.Context, []string) ([]string, error) {
				return nil, errors.New("db down")
			})),
		)
		toks := m.Tokens(ctx, data)
		assert.True(t, toks.Has("member_newsletter"))
		assert.Empty(t, toks.Lookup("member_newsletter"))
	})
}

func TestMailer_Send(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	data := registration.Data{Activation: "x", RequestPath: "r.html", Language: "de"}

	t.Run("no notification configured", func(t *testing.T) {
		t.Parallel()
		d := &MockDispatcher{}
		assert.False(t, registration.NewMailer(site, d).Send(ctx, "", data))
		d.AssertNotCalled(t, "DispatchLanguage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	tests := []struct {
		name    string
		result  notification.Result
		handled bool
	}{
		{"sent", notification.Result{Status: notification.StatusSent}, true},
		{"failed still handled", notification.Result{Status: notification.StatusFailed, Message: "boom"}, true},
		{"language missing", notification.Result{Status: notification.StatusLanguageMissing}, true},
		{"unknown notification", notification.Result{Status: notification.StatusSkipped, Message: notification.ErrConfigurationMissing.Error()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := &MockDispatcher{}
			d.On("DispatchLanguage", mock.Anything, "reg", mock.MatchedBy(func(toks tokens.Tokens) bool {
				return toks.Lookup("link") == "https://example.com/r.html?token=x"
			}), "de").Return(tt.result).Once()

			handled := registration.NewMailer(site, d).Send(ctx, "reg", data)
			require.Equal(t, tt.handled, handled)
			d.AssertExpectations(t)
		})
	}
}
