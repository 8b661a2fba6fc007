// Package bot is the inbound chat surface: it receives Telegram messages,
// gates them through consent and command detection, and hands reminder
// instructions to the intake service.
package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/lifeline-bot/companion/internal/ai"
	"github.com/lifeline-bot/companion/internal/format"
	"github.com/lifeline-bot/companion/internal/intent"
	"github.com/lifeline-bot/companion/internal/models"
	"github.com/lifeline-bot/companion/internal/parser"
	"github.com/lifeline-bot/companion/internal/reminders"
	"github.com/lifeline-bot/companion/internal/repository"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	service *reminders.Service
	users   repository.UserStore
	ai      *ai.Client // optional
	loc     *time.Location
	log     zerolog.Logger
}

func New(api *tgbotapi.BotAPI, service *reminders.Service, users repository.UserStore, aiClient *ai.Client, loc *time.Location, log zerolog.Logger) *Bot {
	return &Bot{
		api:     api,
		service: service,
		users:   users,
		ai:      aiClient,
		loc:     loc,
		log:     log.With().Str("comp", "bot").Logger(),
	}
}

func (b *Bot) Start(ctx context.Context) error {
	b.log.Info().Str("account", b.api.Self.UserName).Msg("bot authorized")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}
	handle := fmt.Sprintf("%d", msg.Chat.ID)

	original, clean := intent.Normalize(msg.Text)
	if original == "" {
		b.reply(msg.Chat.ID, "Hi. I'm here.")
		return
	}
	if !intent.HasLetters(original) {
		// Emoji-only message: acknowledge presence, don't try to parse.
		b.reply(msg.Chat.ID, "I'm here. You don't have to explain.")
		return
	}

	// Pause/resume beat everything else.
	switch intent.DetectCommand(clean) {
	case intent.CommandPause:
		if err := b.users.SetConsent(ctx, handle, models.ConsentPaused); err != nil {
			b.log.Error().Err(err).Str("handle", handle).Msg("failed to save pause status")
		}
		b.log.Info().Str("handle", handle).Msg("opt-out triggered")
		b.reply(msg.Chat.ID, "Okay. I'll pause for now. You can say 'resume' anytime.")
		return
	case intent.CommandResume:
		if err := b.users.SetConsent(ctx, handle, models.ConsentActive); err != nil {
			b.log.Error().Err(err).Str("handle", handle).Msg("failed to save resume status")
		}
		b.log.Info().Str("handle", handle).Msg("resume triggered")
		b.reply(msg.Chat.ID, "I'm back 😊 You can ask me to remind you of something anytime.")
		return
	}

	consent, err := b.users.GetConsent(ctx, handle)
	if err != nil {
		b.log.Warn().Err(err).Str("handle", handle).Msg("user lookup failed")
		consent = models.ConsentActive
	}
	if consent == models.ConsentPaused {
		b.log.Info().Str("handle", handle).Msg("user is paused, no response sent")
		return
	}

	if instruction, ok := intent.ReminderInstruction(original, clean); ok {
		b.handleReminder(ctx, msg.Chat.ID, handle, instruction)
		return
	}

	if intent.IsListRequest(clean) {
		b.handleList(ctx, msg.Chat.ID, handle)
		return
	}

	b.handleConversation(ctx, msg.Chat.ID, original)
}

func (b *Bot) handleList(ctx context.Context, chatID int64, handle string) {
	recs, err := b.service.ListUpcoming(ctx, handle)
	if err != nil {
		b.log.Error().Err(err).Str("handle", handle).Msg("failed to list reminders")
		b.reply(chatID, "Something went wrong looking up your reminders. Please try again.")
		return
	}
	if len(recs) == 0 {
		b.reply(chatID, "You have no upcoming reminders. Say 'remind me to…' to set one.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Your upcoming reminders:\n")
	for _, rec := range recs {
		sb.WriteString(fmt.Sprintf("• *%s* — %s\n", rec.Task, format.When(rec.FireAt, b.loc)))
	}
	b.replyMarkdown(chatID, sb.String())
}

func (b *Bot) handleReminder(ctx context.Context, chatID int64, handle, instruction string) {
	rec, err := b.service.CreateFromInstruction(ctx, handle, instruction)
	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) {
			b.reply(chatID, clarification(perr))
			return
		}
		b.log.Error().Err(err).Str("handle", handle).Msg("failed to create reminder")
		b.reply(chatID, "Something went wrong saving that reminder. Please try again.")
		return
	}

	when := format.When(rec.FireAt, b.loc)
	if rec.IsRecurring() {
		b.replyMarkdown(chatID, fmt.Sprintf(
			"🔁 Done! I'll remind you to *%s* %s.\nFirst reminder: %s.",
			rec.Task, format.Recurrence(rec.Recurrence), when))
		return
	}
	b.replyMarkdown(chatID, fmt.Sprintf("✅ Done! I'll remind you to *%s* at *%s*.", rec.Task, when))
}

func clarification(perr *parser.Error) string {
	switch perr.Kind {
	case parser.FailAmbiguousRecurrence:
		return "🔁 I support:\n" +
			"• \"every day\" (daily at 8 AM)\n" +
			"• \"every Monday\" (weekly)\n" +
			"• \"every 28th\" (monthly)\n\n" +
			"Could you rephrase your reminder?"
	case parser.FailNoTimeFound:
		return fmt.Sprintf("🤔 When should I remind you? I couldn't find a clear time in: %q\n"+
			"Try adding a time like:\n"+
			"• \"in 30 minutes\"\n"+
			"• \"after 1 hour\"\n"+
			"• \"tomorrow at 9am\"\n"+
			"• \"later today\"", perr.Instruction)
	case parser.FailPastDate:
		return "⚠️ That time is in the past! Please choose a future time."
	default:
		return "❌ I couldn't understand the time in your message.\nTry: \"Remind me to drink water tomorrow at 3pm\""
	}
}

var greetings = []string{
	"Hi 😊 I'm here.",
	"Hello. I'm here.",
	"Hey, I'm here.",
}

func (b *Bot) handleConversation(ctx context.Context, chatID int64, message string) {
	detected := intent.Detect(message)

	// Prefer a generated companion reply when an AI client is configured;
	// fall back to the canned ones on any failure.
	if b.ai != nil && (detected == intent.IntentCheckIn || detected == intent.IntentUnknown) {
		if reply, err := b.ai.CompanionReply(ctx, message); err == nil && reply != "" {
			b.reply(chatID, reply)
			return
		} else if err != nil {
			b.log.Warn().Err(err).Msg("companion reply failed, using canned response")
		}
	}

	switch detected {
	case intent.IntentGreeting:
		b.reply(chatID, greetings[rand.Intn(len(greetings))])
	case intent.IntentCheckIn:
		b.reply(chatID, "Thanks for telling me. I'm here.")
	case intent.IntentQuestion:
		b.reply(chatID, "I'm still learning! You can ask me to set reminders, or just say hi.")
	default:
		b.reply(chatID, "I might not have understood that yet.\nYou can say things like 'remind me to…' or 'pause'.")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
	}
}

func (b *Bot) replyMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
	}
}
