/*
Package notify delivers notifications: it aggregates grade changes into per-user
digests, paces broadcasts to stay under Telegram's flood limits and remembers
which daily notifications were already sent.
*/
package notify

import (
	"context"
)

// Message represents a text message to be sent to a chat
type Message struct {
	Text      string
	Markdown  bool // the text is MarkdownV2
	NoPreview bool // disable link previews
}

// Sender delivers messages to chats
type Sender interface {
	Deliver(ctx context.Context, chatID int64, msg Message) error
}
