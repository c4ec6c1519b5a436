package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/giftbox-shop/config"
	"github.com/example/giftbox-shop/internal/catalog"
	"github.com/example/giftbox-shop/internal/infrastructure/kafka"
	"github.com/example/giftbox-shop/internal/infrastructure/store"
	"github.com/example/giftbox-shop/internal/projection"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	log.Println("[Projector] ========================================")
	log.Println("[Projector] Gift Box Shop - Projector")
	log.Println("[Projector] ========================================")
	log.Printf("[Projector] Kafka: %v", cfg.Kafka.Brokers)
	log.Printf("[Projector] Topic: %s", cfg.Kafka.Topic)
	log.Printf("[Projector] Group: %s", cfg.Kafka.ConsumerGroup)

	db, err := store.ConnectPostgres(cfg.Store.PostgresURL)
	if err != nil {
		log.Fatalf("[Projector] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("[Projector] Connected to PostgreSQL (Read DB)")

	readStore := store.NewPostgresReadStore(db)

	projector := projection.NewProjector(readStore)
	projector.SeedProducts(catalog.MustLoad())

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ConsumerGroup)
	defer consumer.Close()

	go func() {
		log.Println("[Projector] Starting event consumer...")
		log.Printf("[Projector] Listening to topic: %s", cfg.Kafka.Topic)
		if err := consumer.Consume(ctx, projector.HandleEvent); err != nil && ctx.Err() == nil {
			log.Printf("[Projector] Consumer error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Projector] Shutting down...")
	cancel()
}
