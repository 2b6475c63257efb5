package validator

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
)

// Required fails on empty or whitespace-only strings.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "is required"},
	}
}

// RequiredSlice fails on an empty slice.
func RequiredSlice[T any](field string, values []T) Rule {
	return Rule{
		Check: func() bool { return len(values) > 0 },
		Error: ValidationError{Field: field, Message: "must contain at least one item"},
	}
}

// InRange checks min <= value <= max.
func InRange(field string, value, minValue, maxValue int) Rule {
	return Rule{
		Check: func() bool { return value >= minValue && value <= maxValue },
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be between %d and %d", minValue, maxValue),
		},
	}
}

// OneOf checks that value is one of allowed.
func OneOf(field, value string, allowed ...string) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(allowed, value) },
		Error: ValidationError{
			Field:   field,
			Message: "must be one of: " + strings.Join(allowed, ", "),
		},
	}
}

// ValidEmail validates a bare email address.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool { return IsEmail(value) },
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// ValidEmails validates every address in values.
func ValidEmails(field string, values []string) Rule {
	return Rule{
		Check: func() bool {
			for _, v := range values {
				if !IsEmail(v) {
					return false
				}
			}
			return true
		},
		Error: ValidationError{Field: field, Message: "must contain only valid email addresses"},
	}
}

// IsEmail reports whether value is a usable address: parseable by net/mail,
// exactly one "@", a non-empty local part and a dotted domain without empty labels.
// Display names are not accepted here; use ParseAddress for the friendly form.
func IsEmail(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}

	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Name != "" || addr.Address != value {
		return false
	}
	return validAddress(addr.Address)
}

// ParseAddress accepts both "a@b.c" and "Name <a@b.c>" and returns the
// display name and bare address. ok is false for anything invalid.
func ParseAddress(value string) (name, address string, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", "", false
	}

	addr, err := mail.ParseAddress(value)
	if err != nil || !validAddress(addr.Address) {
		return "", "", false
	}
	return addr.Name, addr.Address, true
}

func validAddress(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}

	localPart := parts[0]
	domain := parts[1]

	if localPart == "" {
		return false
	}

	// Domain must contain at least one dot and cannot start/end with dot
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}

	for part := range strings.SplitSeq(domain, ".") {
		if part == "" {
			return false
		}
	}

	return true
}
