package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/auth"
	"github.com/iliyamo/movie-booking/internal/config"
	"github.com/iliyamo/movie-booking/internal/database"
	"github.com/iliyamo/movie-booking/internal/handler"
	"github.com/iliyamo/movie-booking/internal/logger"
	"github.com/iliyamo/movie-booking/internal/middleware"
	"github.com/iliyamo/movie-booking/internal/notify"
	"github.com/iliyamo/movie-booking/internal/queue"
	"github.com/iliyamo/movie-booking/internal/repository"
	"github.com/iliyamo/movie-booking/internal/router"
	"github.com/iliyamo/movie-booking/internal/service"
	"github.com/iliyamo/movie-booking/internal/upload"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	addr := pflag.String("addr", "", "listen address, overrides APP_PORT")
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

	err = run(cfg, *addr, log)
	if err != nil {
		log.Error("server stopped", zap.Error(err))
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config, addr string, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cleanup closers
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		cleanup.close(closeCtx, log)
	}()

	client, err := database.Open(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	cleanup.add("mongo", client.Disconnect)
	db := client.Database(cfg.DBName)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	movies := repository.NewMovieRepo(db)
	theaters := repository.NewTheaterRepo(db)
	bookings := repository.NewBookingRepo(db)
	if seeded, err := roles.SeedDefaults(ctx); err != nil {
		return err
	} else if seeded {
		log.Info("default roles seeded")
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unreachable, rate limiting disabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		cleanup.add("redis", func(context.Context) error { return rdb.Close() })
	}

	uploads, err := upload.NewLocalStore(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		return err
	}

	next, closeSender := newSender(cfg, log)
	cleanup.add("notification transport", func(context.Context) error { closeSender(); return nil })
	notifier := notify.NewAsync(next, log, 30*time.Second)
	cleanup.add("notification drain", notifier.Close)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := service.NewAuthService(users, roles, tokens, notifier, log, cfg.FrontendURL, cfg.BcryptCost)
	userSvc := service.NewUserService(users, roles, uploads, log)
	movieSvc := service.NewMovieService(movies, log)
	theaterSvc := service.NewTheaterService(theaters, movies, log)
	bookingSvc := service.NewBookingService(bookings, users, movies, theaters, notifier, log)

	checks := map[string]handler.Pinger{
		"mongo": handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) }),
	}
	if rdb != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = handler.JSONSerializer{}
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	router.RegisterRoutes(e, router.Handlers{
		Auth:     handler.NewAuthHandler(authSvc, uploads, log),
		Users:    handler.NewUserHandler(userSvc, uploads, log),
		Movies:   handler.NewMovieHandler(movieSvc, log),
		Theaters: handler.NewTheaterHandler(theaterSvc, log),
		Bookings: handler.NewBookingHandler(bookingSvc, log),
		Health:   handler.Health(checks),
	}, router.Options{
		Tokens:    tokens,
		RateLimit: middleware.NewTokenBucket(cfg.RateLimit, rdb, log),
		UploadDir: uploads.Dir(),
	})

	if addr == "" {
		addr = ":" + cfg.Port
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	return nil
}

// newSender picks the notification transport: the queue when configured,
// direct SMTP when a mail host is set, and otherwise a no-op.
func newSender(cfg config.Config, log *zap.Logger) (notify.Sender, func()) {
	if cfg.Queue.URL != "" {
		pub := queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Queue)
		log.Info("notifications go through rabbitmq", zap.String("queue", cfg.Queue.Queue))
		return pub, func() { _ = pub.Close() }
	}
	if cfg.Mail.Host != "" {
		renderer, err := notify.NewRenderer()
		if err == nil {
			var mailer *notify.Mailer
			if mailer, err = notify.NewMailer(cfg.Mail, renderer); err == nil {
				log.Info("notifications sent over smtp", zap.String("host", cfg.Mail.Host))
				return mailer, func() {}
			}
		}
		log.Warn("smtp mailer unavailable", zap.Error(err))
	}
	log.Warn("no notification transport configured, emails are dropped")
	return notify.Noop{}, func() {}
}

// closers releases resources in reverse order of acquisition, so that
// early startup failures release whatever was already opened.
type closers []closer

type closer struct {
	name string
	fn   func(context.Context) error
}

func (c *closers) add(name string, fn func(context.Context) error) {
	*c = append(*c, closer{name: name, fn: fn})
}

func (c closers) close(ctx context.Context, log *zap.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].fn(ctx); err != nil {
			log.Warn("close "+c[i].name, zap.Error(err))
		}
	}
}

func fatal(err error) {
	_, _ = os.Stderr.WriteString("movie-booking: " + err.Error() + "\n")
	os.Exit(1)
}
