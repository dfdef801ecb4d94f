package service

import (
	"strings"
)

// bodyText turns a downstream response body into text safe to embed in JSON and logs.
// Webhook error pages are not always UTF-8.
func bodyText(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

// logPreview shortens long bodies for log lines; responses always carry the full text.
func logPreview(s string) string {
	const max = 512
	if len(s) <= max {
		return s
	}
	return strings.ToValidUTF8(s[:max], "") + "..."
}
