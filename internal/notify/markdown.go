package notify

import (
	"regexp"
)

var (
	reservedChars      = regexp.MustCompile("([_*\\[\\]()~`>#+\\-=|{}.!\\\\])")
	notFormattingChars = regexp.MustCompile(`([\[\]()>#+\-=|{}.!\\])`)
)

// EscapeReserved escapes every character MarkdownV2 reserves
func EscapeReserved(s string) string {
	return reservedChars.ReplaceAllString(s, `\$1`)
}

// EscapeNotFormatting escapes the reserved characters except the `*`, `_`, `~` and `` ` `` formatting marks
func EscapeNotFormatting(s string) string {
	return notFormattingChars.ReplaceAllString(s, `\$1`)
}
