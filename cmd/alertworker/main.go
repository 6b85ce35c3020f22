package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/suPer8Hu/serene-backend/internal/config"
	"github.com/suPer8Hu/serene-backend/internal/email"
	"github.com/suPer8Hu/serene-backend/internal/logging"
	"github.com/suPer8Hu/serene-backend/internal/safety"
	"github.com/suPer8Hu/serene-backend/internal/store/rabbitmq"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.RabbitURL == "" {
		logger.Fatal("RABBIT_URL is required")
	}

	consumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, cfg.RabbitQueue, rabbitmq.ConsumerOptions{
		Concurrency: cfg.WorkerConcurrency,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("rabbit connect", zap.Error(err))
	}
	defer consumer.Close()

	smtp := email.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}
	h := &alertHandler{smtp: smtp, to: cfg.AlertEmailTo, log: logger}
	if !smtp.Configured() || h.to == "" {
		logger.Warn("alert email delivery disabled, alerts will only be logged")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := consumer.Run(ctx, h.Handle); err != nil {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
}

type alertHandler struct {
	smtp email.SMTPConfig
	to   string
	log  *zap.Logger
}

func (h *alertHandler) Handle(ctx context.Context, body []byte) error {
	var a safety.Alert
	if err := json.Unmarshal(body, &a); err != nil || a.ID == "" {
		return fmt.Errorf("%w: bad alert payload: %v", rabbitmq.ErrPermanent, err)
	}

	fields := []zap.Field{
		zap.String("alert_id", a.ID),
		zap.String("user_id", a.UserID),
		zap.Uint64("conversation_id", a.ConversationID),
		zap.String("intent", a.Intent),
	}
	if !h.smtp.Configured() || h.to == "" {
		h.log.Warn("safety alert", fields...)
		return nil
	}

	subject, text := safety.FormatEmail(a)
	if err := email.SendText(h.smtp, h.to, subject, text); err != nil {
		return err
	}
	h.log.Info("safety alert emailed", fields...)
	return nil
}
