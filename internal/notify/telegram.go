package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"eventcrm/internal/models"
	"eventcrm/internal/workflow"
)

type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(botToken string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) LeadStatusChanged(lead *models.Lead, fromStatus string) error {
	if n == nil || n.bot == nil || n.chatID == 0 {
		log.Printf("[tg][skip] bot or chatID not configured")
		return nil
	}
	text := fmt.Sprintf("Лид «%s»: %s → %s",
		lead.Title, workflow.Label(fromStatus), workflow.Label(lead.Status))

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	return nil
}
