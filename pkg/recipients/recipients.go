// Package recipients turns a recipient field into a clean address list.
//
// A field may hold tokens, several addresses separated by commas, semicolons or
// line breaks, and friendly "Name <address>" entries:
//
//	to := recipients.Compile("##admin_email##, Support <support@example.com>", toks)
//
// Invalid addresses are dropped silently. Duplicates are removed by address,
// ignoring case, keeping the first occurrence.
package recipients

import (
	"strings"

	"github.com/dmitrymomot/notifycenter/pkg/expand"
	"github.com/dmitrymomot/notifycenter/pkg/tokens"
	"github.com/dmitrymomot/notifycenter/pkg/validator"
)

// Compile expands field with toks and returns the valid, de-duplicated recipients.
// Entries keep the form they were written in. The result is never nil.
func Compile(field string, toks tokens.Tokens) []string {
	out := []string{}
	if strings.TrimSpace(field) == "" {
		return out
	}

	expanded := expand.Expand(field, toks, expand.NoTags)
	seen := make(map[string]struct{})

	for _, entry := range Split(expanded) {
		_, address, ok := validator.ParseAddress(entry)
		if !ok {
			continue
		}
		key := strings.ToLower(address)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, entry)
	}

	return out
}

// Addresses returns the bare addresses of a compiled list.
func Addresses(list []string) []string {
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if _, address, ok := validator.ParseAddress(entry); ok {
			out = append(out, address)
		}
	}
	return out
}

// Split breaks a raw field into trimmed, non-empty entries.
// Commas and semicolons inside a quoted name or an <address> do not split;
// line breaks always do.
func Split(raw string) []string {
	var (
		out     []string
		current strings.Builder
		quoted  bool
		escaped bool
		angle   bool
	)
	flush := func() {
		if p := strings.TrimSpace(current.String()); p != "" {
			out = append(out, p)
		}
		current.Reset()
		quoted, escaped, angle = false, false, false
	}

	for _, r := range raw {
		switch {
		case r == '\n' || r == '\r':
			flush()
			continue
		case escaped:
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case !quoted && r == '<':
			angle = true
		case !quoted && r == '>':
			angle = false
		case !quoted && !angle && (r == ',' || r == ';'):
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()

	if out == nil {
		return []string{}
	}
	return out
}
