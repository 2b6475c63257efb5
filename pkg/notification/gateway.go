package notification

import (
	"context"

	"github.com/dmitrymomot/notifycenter/pkg/tokens"
)

// Gateway delivers one message of a notification.
type Gateway interface {
	Send(ctx context.Context, req SendRequest) error
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, req SendRequest) error

func (f GatewayFunc) Send(ctx context.Context, req SendRequest) error {
	return f(ctx, req)
}

// SendRequest carries everything a gateway needs for one message.
// It is passed by value; gateways must not keep references to it.
type SendRequest struct {
	Notification Notification
	Gateway      GatewayConfig
	Message      Message
	Tokens       tokens.Tokens
	Language     string
	// Progress is optional; gateways report intermediate states through it.
	Progress *Progress
}
