package notification

import (
	"strings"

	"golang.org/x/text/language"
)

// CanonicalLanguage normalises a language code so that "de_CH", "de-ch" and
// "de-CH" compare equal. Codes that are not valid BCP 47 tags are lower-cased
// with underscores replaced by dashes.
func CanonicalLanguage(code string) string {
	code = strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if code == "" {
		return ""
	}
	if tag, err := language.Parse(code); err == nil {
		return strings.ToLower(tag.String())
	}
	return strings.ToLower(code)
}

// ResolveLanguage picks the variant for code: an exact match first, then the
// fallback variant. It returns ErrLanguageNotFound when neither exists.
func ResolveLanguage(variants []Language, code string) (*Language, error) {
	want := CanonicalLanguage(code)

	var fallback *Language
	for i := range variants {
		v := &variants[i]
		if want != "" && CanonicalLanguage(v.Language) == want {
			found := *v
			return &found, nil
		}
		if v.Fallback && fallback == nil {
			fallback = v
		}
	}

	if fallback != nil {
		found := *fallback
		return &found, nil
	}
	return nil, ErrLanguageNotFound
}
