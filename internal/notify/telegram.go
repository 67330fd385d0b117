package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/i474232898/pest-advisory/internal/risk"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts high-severity alerts to an extension officers' chat.
type Telegram struct {
	bot    sender
	chatID int64
	logger *zap.Logger
}

// NewTelegram authorizes the bot token against the Telegram API.
func NewTelegram(token string, chatID int64, logger *zap.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}
	logger.Info("telegram notifier authorized", zap.String("username", bot.Self.UserName))
	return &Telegram{bot: bot, chatID: chatID, logger: logger}, nil
}

func (t *Telegram) Notify(ctx context.Context, farmer risk.FarmerRecord, alerts []risk.Alert) error {
	text := highRiskSummary(farmer, alerts)
	if text == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	t.logger.Debug("telegram alert sent", zap.String("uid", farmer.UID))
	return nil
}

func highRiskSummary(farmer risk.FarmerRecord, alerts []risk.Alert) string {
	var b strings.Builder
	for _, a := range alerts {
		if a.Severity != risk.SeverityHigh {
			continue
		}
		if b.Len() == 0 {
			fmt.Fprintf(&b, "High pest risk in %s (farmer %s)\n", farmer.District, farmer.UID)
		}
		fmt.Fprintf(&b, "- %s: %s, score %.2f\n", a.CropName, a.TriggerPest, a.RiskScore)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
