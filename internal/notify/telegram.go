package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of *tgbotapi.BotAPI used here.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram delivers messages to users that linked a chat id.
type Telegram struct {
	bot sender
}

func NewTelegram(token string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{bot: bot}, nil
}

func (t *Telegram) Notify(ctx context.Context, to Recipient, msg Message) error {
	if to.TelegramChatID == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tm := tgbotapi.NewMessage(to.TelegramChatID, "*"+tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, msg.Subject)+"*\n\n"+
		tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, msg.Body))
	tm.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := t.bot.Send(tm); err != nil {
		return fmt.Errorf("send telegram message to user %d: %w", to.UserID, err)
	}
	return nil
}
