package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize cleans user-supplied text (names, rejection reasons) that is
// later rendered by the browser clients.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
