package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize cleans HTML content to prevent XSS attacks. Markdown image syntax
// passes through untouched; embedded <img> tags keep their src attribute.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
