// Package telegram mirrors staff events to a Telegram chat.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// StaffNotifier implements ports.StaffNotifier.
type StaffNotifier struct {
	bot    botSender
	chatID int64
}

// NewStaffNotifier logs the bot in with token and posts to chatID.
func NewStaffNotifier(token string, chatID int64) (*StaffNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot login: %w", err)
	}
	return &StaffNotifier{bot: api, chatID: chatID}, nil
}

func (n *StaffNotifier) NotifyStaff(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
