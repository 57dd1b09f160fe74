package format

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML escapes text for safe interpolation into Telegram HTML
// parse mode messages.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}
