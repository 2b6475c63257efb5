package gateway

import (
	"net/url"
	"regexp"
	"strings"
)

var urlAttrRegex = regexp.MustCompile(`(?i)\b(href|src|action)(\s*=\s*)(?:"([^"]*)"|'([^']*)')`)

// AbsoluteURLs rewrites relative href, src and action attribute values in
// content so they point below base. Absolute, protocol-relative, fragment and
// insert-tag values are left alone, as is everything when base is not an
// absolute URL.
func AbsoluteURLs(content, base string) string {
	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() || !strings.Contains(content, "=") {
		return content
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	return urlAttrRegex.ReplaceAllStringFunc(content, func(match string) string {
		parts := urlAttrRegex.FindStringSubmatch(match)
		quote := match[len(parts[1])+len(parts[2])]
		value := parts[3]
		if quote == '\'' {
			value = parts[4]
		}

		abs, ok := absolute(baseURL, value)
		if !ok {
			return match
		}
		return parts[1] + parts[2] + string(quote) + abs + string(quote)
	})
}

func absolute(base *url.URL, value string) (string, bool) {
	v := strings.TrimSpace(value)
	if v == "" || strings.HasPrefix(v, "#") || strings.HasPrefix(v, "//") || strings.HasPrefix(v, "{{") {
		return "", false
	}

	ref, err := url.Parse(v)
	if err != nil || ref.IsAbs() {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}
