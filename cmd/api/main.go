package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/example/giftbox-shop/config"
	"github.com/example/giftbox-shop/internal/api"
	"github.com/example/giftbox-shop/internal/catalog"
	"github.com/example/giftbox-shop/internal/command"
	"github.com/example/giftbox-shop/internal/domain/cart"
	"github.com/example/giftbox-shop/internal/domain/order"
	"github.com/example/giftbox-shop/internal/infrastructure/kafka"
	"github.com/example/giftbox-shop/internal/infrastructure/store"
	"github.com/example/giftbox-shop/internal/notification"
	"github.com/example/giftbox-shop/internal/payment"
	"github.com/example/giftbox-shop/internal/pricing"
	"github.com/example/giftbox-shop/internal/projection"
	"github.com/example/giftbox-shop/internal/query"
	"github.com/example/giftbox-shop/internal/session"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	cfg.Print()

	log.Println("[API] ========================================")
	log.Println("[API] Gift Box Shop - CQRS Mode")
	log.Println("[API] ========================================")

	jwtSecret := cfg.Session.Secret
	if jwtSecret == "" {
		log.Println("[API] WARNING: GIFTBOX_SESSION_SECRET not set, using an ephemeral secret; sessions will not survive restarts")
		jwtSecret = session.NewSessionID() + session.NewSessionID()
	}

	// Publisher: Kafka in deployed mode, in-process bus otherwise
	var publisher store.Publisher
	var bus *store.LocalBus
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
		log.Printf("[API] Kafka: %v topic=%s", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		bus = store.NewLocalBus()
		publisher = bus
		log.Println("[API] Running with in-process event bus")
	}

	// Event store and read store per configured backend
	var eventStore store.EventStoreInterface
	var readStore store.ReadStoreInterface
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := store.ConnectPostgres(cfg.Store.PostgresURL)
		if err != nil {
			log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()
		eventStore = store.NewPostgresEventStore(db, publisher)
		readStore = store.NewPostgresReadStore(db)
		log.Println("[API] Store backend: PostgreSQL")
	case config.BackendDynamo:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatalf("[API] Failed to load AWS config: %v", err)
		}
		client := dynamodb.NewFromConfig(awsCfg)
		eventStore = store.NewDynamoEventStore(client, cfg.Store.DynamoTable, cfg.Store.SnapshotTable, publisher)
		readStore = store.NewReadStore()
		log.Printf("[API] Store backend: DynamoDB (%s)", cfg.Store.DynamoTable)
	default:
		eventStore = store.NewEventStore(publisher)
		readStore = store.NewReadStore()
		log.Println("[API] Store backend: in-memory")
	}

	cat := catalog.MustLoad()
	log.Printf("[API] Catalog loaded: %d products", cat.Len())

	pricingCfg, err := pricing.ParseConfig(cfg.Pricing.FreeShippingThreshold, cfg.Pricing.ShippingFee, cfg.Pricing.TaxRate)
	if err != nil {
		log.Fatalf("[API] Invalid pricing config: %v", err)
	}
	pricer := pricing.NewEngine(pricingCfg)

	cartSvc := cart.NewService(eventStore)
	orderSvc := order.NewService(eventStore)
	notifier := notification.NewLogNotifier()

	cmdHandler := command.NewHandler(cat, cartSvc, orderSvc, pricer, notifier)
	queryHandler := query.NewHandler(readStore)

	// Seed the catalog and rebuild read models from history
	projector := projection.NewProjector(readStore)
	projector.SeedProducts(cat)
	if err := projector.Replay(ctx, eventStore.GetAllEvents()); err != nil {
		log.Fatalf("[API] Event replay failed: %v", err)
	}

	processor := payment.NewProcessor(
		payment.NewSimulatedAuthorizer(cfg.Payment.AuthorizeDelay),
		orderSvc, cartSvc, notifier,
	)

	var wg sync.WaitGroup
	if cfg.Kafka.Enabled {
		// Async projection and payment settlement over Kafka
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, "api-projector")
		defer consumer.Close()
		paymentConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, "api-payment")
		defer paymentConsumer.Close()

		wg.Add(2)
		go func() {
			defer wg.Done()
			log.Println("[API] Starting Kafka consumer (async projection)...")
			if err := consumer.Consume(ctx, projector.HandleEvent); err != nil && ctx.Err() == nil {
				log.Printf("[API] Projector error: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			log.Println("[API] Starting Kafka consumer (payment processor)...")
			if err := paymentConsumer.Consume(ctx, processor.HandleEvent); err != nil && ctx.Err() == nil {
				log.Printf("[API] Payment processor error: %v", err)
			}
		}()
	} else {
		bus.Subscribe("projector", projector.HandleEvent)
		bus.Subscribe("payment", processor.HandleEvent)
	}

	jwtService := session.NewJWTService(jwtSecret, cfg.Session.Expiry)

	handlers := api.NewHandlers(cmdHandler, queryHandler, pricer)
	router := api.NewRouter(handlers, jwtService, cfg.WebDir)

	server := &http.Server{
		Addr:    cfg.HTTPServerAddr,
		Handler: router,
	}

	go func() {
		log.Println("[API] ========================================")
		log.Printf("[API] Server started on %s", cfg.HTTPServerAddr)
		log.Println("[API] ========================================")
		log.Println("[API] Note: Using ASYNC projection")
		log.Println("[API] Read model updates may have slight delay")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	if bus != nil {
		bus.Wait()
	}
	wg.Wait()
}
