package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/giftbox-shop/config"
	"github.com/example/giftbox-shop/internal/email"
	"github.com/example/giftbox-shop/internal/infrastructure/kafka"
	"github.com/example/giftbox-shop/internal/infrastructure/store"
	"github.com/example/giftbox-shop/internal/notification"
)

// Dedicated consumer group so email delivery lags never hold back the projector
const consumerGroup = "email-notifier"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	log.Println("[Notifier] ========================================")
	log.Println("[Notifier] Gift Box Shop - Email Notification Service")
	log.Println("[Notifier] ========================================")
	log.Printf("[Notifier] Kafka: %v", cfg.Kafka.Brokers)
	log.Printf("[Notifier] Topic: %s", cfg.Kafka.Topic)
	log.Printf("[Notifier] Group: %s", consumerGroup)
	log.Printf("[Notifier] SMTP: %s:%s", cfg.SMTP.Host, cfg.SMTP.Port)
	log.Printf("[Notifier] From: %s", cfg.SMTP.From)

	// Order read models live in PostgreSQL
	db, err := store.ConnectPostgres(cfg.Store.PostgresURL)
	if err != nil {
		log.Fatalf("[Notifier] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("[Notifier] Connected to PostgreSQL (Read DB)")

	readStore := store.NewPostgresReadStore(db)

	emailSvc := email.NewService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)

	handler := notification.NewHandler(emailSvc, readStore)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, consumerGroup)
	defer consumer.Close()

	go func() {
		log.Println("[Notifier] Starting event consumer...")
		log.Printf("[Notifier] Listening to topic: %s", cfg.Kafka.Topic)
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
			log.Printf("[Notifier] Consumer error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Notifier] Shutting down...")
	cancel()
}
