package dispatchapi

import "errors"

// ErrInvalidTokenValue rejects objects and nested lists inside token values.
var ErrInvalidTokenValue = errors.New("token values must be strings, numbers, booleans or lists of those")
