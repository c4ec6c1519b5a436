package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

// Publisher publishes appended events to downstream consumers.
// Implemented by the Kafka producer in deployed mode and by LocalBus
// when everything runs in a single process.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// BusHandler processes one published event payload
type BusHandler func(ctx context.Context, key, value []byte) error

type busSubscriber struct {
	name    string
	handler BusHandler
}

// LocalBus is an in-process Publisher that fans each event out to all
// subscribed handlers. Handlers run in their own goroutine so slow
// consumers (the payment simulator sleeps for seconds) never block the
// request that appended the event.
type LocalBus struct {
	mu          sync.RWMutex
	subscribers []busSubscriber
	wg          sync.WaitGroup
}

func NewLocalBus() *LocalBus {
	return &LocalBus{}
}

// Subscribe registers a handler. The name is only used in error logs.
func (b *LocalBus) Subscribe(name string, handler BusHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, busSubscriber{name: name, handler: handler})
}

// Publish delivers the event to every subscriber asynchronously
func (b *LocalBus) Publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	b.mu.RLock()
	subs := make([]busSubscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, sub := range subs {
		b.wg.Add(1)
		go func(sub busSubscriber) {
			defer b.wg.Done()
			if err := sub.handler(context.WithoutCancel(ctx), []byte(key), data); err != nil {
				log.Printf("[LocalBus] Handler %s failed: %v", sub.name, err)
			}
		}(sub)
	}
	return nil
}

// Wait blocks until all in-flight deliveries have finished
func (b *LocalBus) Wait() {
	b.wg.Wait()
}
