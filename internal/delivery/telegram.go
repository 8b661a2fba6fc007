package delivery

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lifeline-bot/companion/internal/format"
)

// TelegramSender pushes reminder notifications through the Telegram Bot API.
// Sends are rate limited so a large sweep cannot storm the API.
type TelegramSender struct {
	api     *tgbotapi.BotAPI
	limiter *rate.Limiter
	loc     *time.Location
	log     zerolog.Logger
}

func NewTelegramSender(api *tgbotapi.BotAPI, loc *time.Location, log zerolog.Logger) *TelegramSender {
	return &TelegramSender{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(20), 20), // Telegram bot-wide sending limit
		loc:     loc,
		log:     log,
	}
}

func (s *TelegramSender) Send(ctx context.Context, recipient, task string, scheduledAt time.Time) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	chatID, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		return fmt.Errorf("bad recipient handle %q: %w", recipient, err)
	}

	text := fmt.Sprintf("🔔 Reminder: *%s* — scheduled for %s.",
		task, format.When(scheduledAt, s.loc))
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send to %s: %w", recipient, err)
	}
	s.log.Info().Str("recipient", recipient).Msg("reminder delivered")
	return nil
}
