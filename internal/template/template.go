package template

import (
	"regexp"
	"strings"
)

// placeholderPattern matches {{key}} tokens. Key matching is case-sensitive.
var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// urlPattern matches bare http(s) URLs for linkification.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// linkToken temporarily stands in for the certificate link during
// linkification so an already-templated link is never wrapped twice.
const linkToken = "\x00certgen:link\x00"

// Render substitutes {{key}} placeholders with values from vars. Substitution
// is a single pass: substituted values are never re-scanned, and unrecognized
// placeholders pass through verbatim. This never fails; pass-through of
// unknown keys is the documented behavior, not an error.
func Render(tmpl string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := match[2 : len(match)-2]
		if value, ok := vars[key]; ok {
			return value
		}
		return match
	})
}

// HTMLBody renders a plain-text template into an HTML email body: placeholder
// substitution, certificate-link and bare-URL anchoring, newline conversion.
// The certificateLink variable is substituted before generic linkification so
// its URL is anchored exactly once.
func HTMLBody(tmpl string, vars map[string]string) string {
	link, hasLink := vars["certificateLink"]
	if hasLink {
		tokenized := make(map[string]string, len(vars))
		for k, v := range vars {
			tokenized[k] = v
		}
		tokenized["certificateLink"] = linkToken
		vars = tokenized
	}

	body := Render(tmpl, vars)

	body = urlPattern.ReplaceAllStringFunc(body, anchor)

	if hasLink {
		body = strings.ReplaceAll(body, linkToken, anchor(link))
	}

	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\n", "<br>\n")
	return body
}

func anchor(url string) string {
	return `<a href="` + url + `" target="_blank">` + url + `</a>`
}
