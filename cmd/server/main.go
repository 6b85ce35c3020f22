package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/suPer8Hu/serene-backend/internal/account"
	"github.com/suPer8Hu/serene-backend/internal/ai"
	"github.com/suPer8Hu/serene-backend/internal/chat"
	"github.com/suPer8Hu/serene-backend/internal/config"
	"github.com/suPer8Hu/serene-backend/internal/db"
	"github.com/suPer8Hu/serene-backend/internal/email"
	"github.com/suPer8Hu/serene-backend/internal/goals"
	"github.com/suPer8Hu/serene-backend/internal/httpapi"
	"github.com/suPer8Hu/serene-backend/internal/httpapi/handlers"
	"github.com/suPer8Hu/serene-backend/internal/intent"
	"github.com/suPer8Hu/serene-backend/internal/journal"
	"github.com/suPer8Hu/serene-backend/internal/logging"
	"github.com/suPer8Hu/serene-backend/internal/mood"
	"github.com/suPer8Hu/serene-backend/internal/safety"
	"github.com/suPer8Hu/serene-backend/internal/store/rabbitmq"
	"github.com/suPer8Hu/serene-backend/internal/store/redisstore"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gdb, dialect, err := db.Connect(cfg.DBDSN, db.PoolOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer func() { _ = db.Close(gdb) }()

	if err := db.Migrate(gdb, dialect, logger); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	accountOpts := account.Options{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		OTPTTL:    cfg.OTPTTL,
		Logger:    logger,
	}
	if cfg.RedisAddr != "" {
		rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rds.Close() }()
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rds.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, otp requests will fail until it recovers", zap.Error(err))
		}
		cancel()
		accountOpts.OTPStore = rds
		accountOpts.OTPSender = email.OTPMailer{Cfg: email.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		}}
	} else {
		logger.Info("REDIS_ADDR not set, otp login disabled")
	}

	ds, err := intent.LoadDataset(cfg.IntentsPath)
	if err != nil {
		logger.Fatal("load intents", zap.Error(err))
	}
	classifier, err := intent.New(ds)
	if err != nil {
		logger.Fatal("build classifier", zap.Error(err))
	}
	tags := classifier.Tags()
	logger.Info("intents loaded", zap.Int("tags", len(tags)))
	for _, watched := range cfg.SafetyIntents {
		if !slices.Contains(tags, watched) {
			logger.Warn("safety intent not in dataset", zap.String("intent", watched))
		}
	}

	provider, err := newProvider(cfg)
	switch {
	case errors.Is(err, ai.ErrDisabled):
		logger.Info("ai provider disabled, replies come from the intents dataset")
	case err != nil:
		logger.Fatal("ai provider", zap.String("provider", cfg.AIProvider), zap.Error(err))
	}

	chatOpts := chat.Options{
		Classifier:        classifier,
		Provider:          provider,
		ContextWindowSize: cfg.ChatContextWindowSize,
		Logger:            logger,
	}
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			logger.Fatal("rabbit publisher", zap.Error(err))
		}
		defer func() { _ = pub.Close() }()
		chatOpts.Safety = safety.NewMonitor(cfg.SafetyIntents, pub, logger)
	} else {
		logger.Warn("RABBIT_URL not set, safety alerts will only be logged")
		chatOpts.Safety = safety.NewMonitor(cfg.SafetyIntents, nil, logger)
	}

	h := &handlers.Handler{
		Log:      logger,
		Accounts: account.NewService(account.NewRepo(gdb), accountOpts),
		Chat:     chat.NewService(chat.NewRepo(gdb), chatOpts),
		Mood:     mood.NewService(mood.NewRepo(gdb)),
		Journal:  journal.NewService(journal.NewRepo(gdb)),
		Goals:    goals.NewService(goals.NewRepo(gdb)),
		Ready:    pinger(gdb),
	}
	r := httpapi.NewRouter(h, httpapi.Options{
		JWTSecret:        cfg.JWTSecret,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		Logger:           logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("db", string(dialect)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
}

func newProvider(cfg config.Config) (ai.Provider, error) {
	reg := ai.NewDefaultRegistry(ai.Settings{
		OllamaBaseURL:     cfg.OllamaBaseURL,
		OllamaModel:       cfg.OllamaModel,
		OpenRouterBaseURL: cfg.OpenRouterBaseURL,
		OpenRouterAPIKey:  cfg.OpenRouterAPIKey,
		OpenRouterModel:   cfg.OpenRouterModel,
		OpenRouterSiteURL: cfg.OpenRouterSiteURL,
		OpenRouterAppName: cfg.OpenRouterAppName,
		OpenAIBaseURL:     cfg.OpenAIBaseURL,
		OpenAIAPIKey:      cfg.OpenAIAPIKey,
		OpenAIModel:       cfg.OpenAIModel,
	})
	return reg.Get(context.Background(), cfg.AIProvider, "")
}

func pinger(gdb *gorm.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
