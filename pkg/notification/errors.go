package notification

import "errors"

var (
	// ErrConfigurationMissing is reported when a notification has nothing to dispatch.
	ErrConfigurationMissing = errors.New("notification: configuration missing")
	// ErrLanguageNotFound is returned when neither the requested language nor a fallback exists.
	ErrLanguageNotFound = errors.New("notification: language not found")
	// ErrTransportFailure wraps errors returned by the delivery transport.
	ErrTransportFailure = errors.New("notification: transport failure")
	// ErrUnsupportedGateway is reported for gateway types without a registered implementation.
	ErrUnsupportedGateway = errors.New("notification: unsupported gateway")
	// ErrNoRecipients is returned when the To list is empty after compilation.
	ErrNoRecipients = errors.New("notification: no valid recipients")
	// ErrNotFound is returned by storages for unknown ids.
	ErrNotFound = errors.New("notification: not found")
	// ErrDuplicateFallback is returned when a message would get a second fallback language.
	ErrDuplicateFallback = errors.New("notification: message already has a fallback language")
	// ErrInvalidModel wraps validation errors of model writes.
	ErrInvalidModel = errors.New("notification: invalid model")
)
