// internal/domain/telegram/client.go
package telegram

import "gopkg.in/telebot.v3"

// Client is the outbound chat API used for report announcements. Groups and
// channels are addressed by negative chat IDs, direct chats by user IDs.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}
