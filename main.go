package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"marketplace/internal/config"
	"marketplace/internal/database"
	"marketplace/internal/notifications"
	"marketplace/internal/payment"
	"marketplace/internal/repositories"
	"marketplace/internal/server"
	"marketplace/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	log, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}

	deps := server.Deps{
		DB:        db,
		Logger:    log,
		JWTSecret: cfg.JWTSecret,
		Currency:  cfg.Currency,
		Gateway:   payment.Unavailable{},
		AccessLog: true,
	}

	// --- Order number sequence ---
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, using database sequence", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			rdb.Close()
		} else {
			deps.Sequence = repositories.NewRedisSequence(rdb)
			defer rdb.Close()
			log.Info("order numbers drawn from redis", zap.String("addr", cfg.Redis.Addr))
		}
		cancel()
	}

	// --- Payment gateway ---
	if cfg.StripeSecretKey != "" {
		deps.Gateway = payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
		log.Info("stripe gateway enabled")
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, payments are recorded locally only")
	}

	// --- RabbitMQ ---
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, events disabled", zap.Error(err))
		} else {
			defer mqClient.Close()
			deps.Publisher = mqClient
			startConsumer(cfg, mqClient, log)
		}
	}

	app := server.New(deps)

	// --- Start HTTP Server ---
	go func() {
		log.Info("starting server", zap.String("addr", cfg.AppPort))
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during fiber shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// startConsumer mails order confirmations when SMTP is configured.
func startConsumer(cfg config.Config, mqClient *rabbitmq.Client, log *zap.Logger) {
	if cfg.SMTP.Host == "" {
		log.Info("SMTP_HOST not set, order confirmation mails disabled")
		return
	}
	notifier := notifications.NewOrderNotifier(notifications.NewSMTPSender(cfg.SMTP), log.Named("notifier"))
	if err := mqClient.ConsumeOrderEvents(notifier.HandleDelivery); err != nil {
		log.Error("failed to start order event consumer", zap.Error(err))
	}
}
