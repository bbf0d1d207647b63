package notify

import "strings"

var markdownEscaper = strings.NewReplacer(
	`_`, `\_`,
	`*`, `\*`,
	"`", "\\`",
	`[`, `\[`,
)

// escapeMarkdown makes s literal in Telegram's legacy Markdown, so values
// like DUAL_MA(5,20) cannot open an entity the message never closes.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
