// Package binder decodes HTTP request bodies into Go values.
//
// JSON returns a binder function that accepts only application/json bodies,
// enforces a size limit, rejects unknown fields and trailing data:
//
//	bind := binder.JSON(binder.AllowEmptyBody())
//
//	var req DispatchRequest
//	if err := bind(r, &req); err != nil {
//	    switch {
//	    case errors.Is(err, binder.ErrUnsupportedMediaType): // 415
//	    case errors.Is(err, binder.ErrBodyTooLarge):         // 413
//	    case errors.Is(err, binder.ErrFailedToParseJSON):    // 400
//	    }
//	}
//
// Errors returned by a value's UnmarshalJSON method stay reachable through
// errors.Is next to ErrFailedToParseJSON.
package binder
