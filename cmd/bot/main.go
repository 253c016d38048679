package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"gitea.jw6.us/james/coursebot/internal/admin"
	"gitea.jw6.us/james/coursebot/internal/bot"
	"gitea.jw6.us/james/coursebot/internal/config"
	"gitea.jw6.us/james/coursebot/internal/gcal"
	"gitea.jw6.us/james/coursebot/internal/reminder"
	"gitea.jw6.us/james/coursebot/internal/schedule"
	"gitea.jw6.us/james/coursebot/internal/store"
)

func main() {
	log.Println("Starting coursebot...")

	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if cfg.DB.DSN != "" {
		pool, err := pgxpool.New(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatalf("failed to create db pool: %v", err)
		}
		defer pool.Close()

		if err := store.ApplyMigrations(ctx, pool); err != nil {
			log.Fatalf("failed to apply migrations: %v", err)
		}
		st = store.New(pool)
	} else {
		log.Println("no database configured, using in-memory store")
		st = store.NewMemory()
	}

	creds := gcal.NewCredentialStore(cfg)
	token, err := creds.Authorize(ctx, gcal.ConsoleConsent(os.Stdin, os.Stdout))
	if err != nil {
		log.Fatalf("calendar authorization failed: %v", err)
	}

	client, err := gcal.NewClient(ctx, creds, token, cfg.Google.CalendarID)
	if err != nil {
		log.Fatalf("failed to create calendar client: %v", err)
	}

	cache := bot.NewFetchCache()
	calendarCmd := bot.NewCalendarCommand(client, st.Events, cache)

	// The scheduler's notify closure resolves b lazily: reminders can only
	// be scheduled through the bot, which is assigned before it starts.
	var b *bot.Bot
	scheduler := reminder.NewScheduler(func(userID string, ev schedule.Event) {
		b.NotifyReminder(userID, ev)
	})
	defer scheduler.Stop()

	remindCmd := bot.NewRemindCommand(cache, scheduler, st.Reminders)

	b, err = bot.New(cfg.Discord.Token, cfg.Discord.GuildID, calendarCmd, remindCmd)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	if err := b.Start(ctx); err != nil {
		log.Fatalf("failed to start bot: %v", err)
	}
	defer b.Close()

	srv := &http.Server{
		Addr:         cfg.AdminAddr,
		Handler:      admin.NewRouter(st, cfg.PrometheusEnabled),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("admin server listening on %s", cfg.AdminAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("admin server error: %v", err)
		}
	}()

	log.Println("coursebot is running; press Ctrl+C to exit")
	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
