package dispatchapi

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/dmitrymomot/notifycenter/pkg/binder"
	"github.com/dmitrymomot/notifycenter/pkg/notification"
	"github.com/dmitrymomot/notifycenter/pkg/tokens"
	"github.com/dmitrymomot/notifycenter/pkg/validator"
)

// MaxBodySize limits dispatch request bodies.
const MaxBodySize = binder.DefaultMaxJSONSize

// DispatchRequest is the body of POST /notifications/{id}/dispatch.
type DispatchRequest struct {
	Tokens   map[string]TokenValue `json:"tokens"`
	Language string                `json:"language,omitempty"`
}

// TokenValue accepts a JSON scalar or a list of scalars.
type TokenValue struct {
	tokens.Value
}

func (v *TokenValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]string, 0, len(raw))
		for _, r := range raw {
			s, err := scalar(r)
			if err != nil {
				return err
			}
			items = append(items, s)
		}
		v.Value = tokens.List(items...)
		return nil
	}

	s, err := scalar(data)
	if err != nil {
		return err
	}
	v.Value = tokens.String(s)
	return nil
}

func scalar(data json.RawMessage) (string, error) {
	var x any
	if err := json.Unmarshal(data, &x); err != nil {
		return "", err
	}
	switch val := x.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return string(bytes.TrimSpace(data)), nil
	}
	return "", ErrInvalidTokenValue
}

// TokenSet freezes the request tokens.
func (r DispatchRequest) TokenSet() tokens.Tokens {
	b := tokens.NewBuilder()
	for name, v := range r.Tokens {
		b.SetValue(name, v.Value)
	}
	return b.Build()
}

// Validate checks the request after decoding.
func (r DispatchRequest) Validate() error {
	return validator.Apply(
		validator.When(r.Language != "", validator.Rule{
			Check: func() bool { return notification.CanonicalLanguage(r.Language) != "" && len(r.Language) <= 35 },
			Error: validator.ValidationError{Field: "language", Message: "must be a language code"},
		}),
		validator.Rule{
			Check: func() bool {
				for name := range r.Tokens {
					if name == "" {
						return false
					}
				}
				return true
			},
			Error: validator.ValidationError{Field: "tokens", Message: "token names must not be empty"},
		},
	)
}
