package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/config"
	"github.com/iliyamo/movie-booking/internal/logger"
	"github.com/iliyamo/movie-booking/internal/notify"
	"github.com/iliyamo/movie-booking/internal/queue"
)

// notifier drains the notification queue and delivers each message over
// SMTP.
func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	queueName := pflag.String("queue", "", "queue to consume, overrides NOTIFY_QUEUE")
	pflag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		fatal(err)
	}
	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Queue.URL == "" {
		log.Fatal("RABBITMQ_URL is not set")
	}
	if *queueName != "" {
		cfg.Queue.Queue = *queueName
	}

	renderer, err := notify.NewRenderer()
	if err != nil {
		log.Fatal("load email templates", zap.Error(err))
	}
	mailer, err := notify.NewMailer(cfg.Mail, renderer)
	if err != nil {
		log.Fatal("smtp mailer", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("notifier started", zap.String("queue", cfg.Queue.Queue))
	err = queue.NewConsumer(cfg.Queue.URL, cfg.Queue.Queue, mailer, log).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("consumer stopped", zap.Error(err))
	}
	log.Info("notifier stopped")
}

func fatal(err error) {
	_, _ = os.Stderr.WriteString("notifier: " + err.Error() + "\n")
	os.Exit(1)
}
