package report

import "strings"

// markupReplacer performs all replacements in a single pass, so the
// ampersands it emits are never escaped again.
var markupReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeMarkup makes s safe to embed as HTML text or attribute content.
func EscapeMarkup(s string) string {
	return markupReplacer.Replace(s)
}

// EscapeDelimited quotes s for a comma separated record when it contains a
// comma, a double quote or a newline. Embedded quotes are doubled.
func EscapeDelimited(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
