package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"

	"github.com/lifeline-bot/companion/internal/ai"
	"github.com/lifeline-bot/companion/internal/bot"
	"github.com/lifeline-bot/companion/internal/config"
	"github.com/lifeline-bot/companion/internal/database"
	"github.com/lifeline-bot/companion/internal/delivery"
	"github.com/lifeline-bot/companion/internal/logging"
	"github.com/lifeline-bot/companion/internal/parser"
	"github.com/lifeline-bot/companion/internal/recurrence"
	"github.com/lifeline-bot/companion/internal/reminders"
	"github.com/lifeline-bot/companion/internal/repository"
	"github.com/lifeline-bot/companion/internal/repository/memory"
	"github.com/lifeline-bot/companion/internal/scheduler"
	"github.com/lifeline-bot/companion/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel)

	if cfg.TelegramToken == "" {
		log.Fatal().Msg("TELEGRAM_TOKEN is required")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("invalid timezone")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Record store: Postgres when configured, in-memory otherwise.
	var store repository.Store
	var users repository.UserStore
	if cfg.DatabaseURI != "" {
		db, err := database.New(ctx, cfg.DatabaseURI)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		log.Info().Msg("connected to database")
		store = repository.NewReminderRepository(db)
		users = repository.NewUserRepository(db)
	} else {
		log.Warn().Msg("DATABASE_URI not set, reminders will not survive a restart")
		store = memory.NewReminderStore()
		users = memory.NewUserStore()
	}

	var aiClient *ai.Client
	if cfg.AIAPIKey != "" {
		aiClient = ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		log.Info().Str("model", cfg.AIModel).Msg("ai client initialized")
	} else {
		log.Info().Msg("ai client not configured, using canned replies")
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create telegram api")
	}

	clk := clock.New()
	resolver := recurrence.NewResolver(loc)
	sender := delivery.NewTelegramSender(api, loc, log)
	dispatcher := scheduler.NewDispatcher(store, sender, resolver, clk, log)
	engine := scheduler.NewEngine(dispatcher, clk, log)

	// Re-arm everything that survived the restart before accepting input.
	loader := scheduler.NewLoader(store, resolver, engine, clk, log)
	if err := loader.Run(ctx); err != nil {
		log.Error().Err(err).Msg("recovery failed, continuing with empty timer table")
	}

	service := reminders.NewService(parser.New(), resolver, store, engine, clk, loc, log)

	// In-process safety-net sweep: catches records whose send failed and
	// anything an external cron service would otherwise have to poke.
	c := cron.New()
	if _, err := c.AddFunc(cfg.SweepSpec, func() {
		if _, err := engine.SweepDue(context.Background()); err != nil {
			log.Error().Err(err).Msg("periodic sweep failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.SweepSpec).Msg("invalid sweep spec")
	}
	c.Start()
	defer c.Stop()

	httpSrv := server.New(cfg.HTTPAddr, store, engine, clk, loc, cfg.SweepSecret, log)
	go func() {
		if err := httpSrv.Start(ctx); err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")
		cancel()
	}()

	b := bot.New(api, service, users, aiClient, loc, log)
	log.Info().Msg("starting bot")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("bot error")
	}
}
