package certificate

import (
	"regexp"
	"strings"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// SanitizeName reduces a recipient name to a form safe for storage keys and
// download filenames: special characters stripped, whitespace runs collapsed
// to a single underscore. "Jo@hn Doe!" becomes "John_Doe".
func SanitizeName(name string) string {
	name = nonAlphanumeric.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	return whitespaceRun.ReplaceAllString(name, "_")
}

// AttachmentFilename is the filename used for the emailed certificate and
// for entries in a bulk ZIP archive.
func AttachmentFilename(name string) string {
	return SanitizeName(name) + "_certificate.png"
}
