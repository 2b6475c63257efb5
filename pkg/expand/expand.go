package expand

import (
	"html"
	"regexp"
	"strings"

	"github.com/dmitrymomot/notifycenter/pkg/tokens"
)

// Flag alters how Expand treats the input.
type Flag uint8

const (
	// NoTags skips conditional blocks and strips HTML from token values.
	NoTags Flag = 1 << iota
	// NoBreaks folds line breaks of the output into single spaces.
	NoBreaks
)

// MaxDepth bounds the number of expansion rounds for templated token values.
const MaxDepth = 3

var (
	placeholderRegex = regexp.MustCompile(`##([A-Za-z0-9_.:\-]+)##`)
	htmlTagRegex     = regexp.MustCompile(`(?s)<!--.*?-->|</?[A-Za-z][A-Za-z0-9-]*(?:\s[^<>]*)?/?>`)
	lineBreakRegex   = regexp.MustCompile(`[\r\n]+`)
)

// Expand renders text with the given tokens. It is a pure function.
func Expand(text string, toks tokens.Tokens, flags Flag) string {
	if text == "" {
		return ""
	}

	out := text
	for range MaxDepth {
		next := expandOnce(out, toks, flags)
		changed := next != out
		out = next
		if !changed || !hasMarkup(out, flags) {
			break
		}
	}
	// Placeholders produced by the last round are never shown to recipients.
	out = placeholderRegex.ReplaceAllString(out, "")

	if flags&NoBreaks != 0 {
		out = strings.TrimSpace(lineBreakRegex.ReplaceAllString(out, " "))
	}
	return out
}

func expandOnce(text string, toks tokens.Tokens, flags Flag) string {
	if flags&NoTags == 0 && strings.Contains(text, "{") {
		text = renderBlocks(text, toks)
	}
	if !strings.Contains(text, "##") {
		return text
	}
	return substitute(text, toks, flags)
}

// substitute replaces placeholders in a single left-to-right pass; inserted values
// are not scanned again within the same round.
func substitute(text string, toks tokens.Tokens, flags Flag) string {
	return placeholderRegex.ReplaceAllStringFunc(text, func(m string) string {
		name := m[2 : len(m)-2]
		v := toks.Lookup(name)
		if flags&NoTags != 0 && v != "" {
			v = html.UnescapeString(htmlTagRegex.ReplaceAllString(v, ""))
		}
		return v
	})
}

func hasMarkup(s string, flags Flag) bool {
	if placeholderRegex.MatchString(s) {
		return true
	}
	return flags&NoTags == 0 && blockTagRegex.MatchString(s)
}
