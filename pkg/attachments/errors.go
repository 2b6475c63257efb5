package attachments

import "errors"

var (
	ErrInvalidRoot   = errors.New("attachments: invalid root directory")
	ErrInvalidPath   = errors.New("attachments: path escapes root directory")
	ErrFileNotFound  = errors.New("attachments: file not found")
	ErrNotRegular    = errors.New("attachments: not a regular file")
	ErrLookupFailure = errors.New("attachments: file lookup failed")
)
