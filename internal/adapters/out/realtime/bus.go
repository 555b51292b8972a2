package realtime

import (
	"context"
	"sync"

	"lastmile/internal/core/domain/model/event"
)

// Bus carries envelopes between the instances of the service.
type Bus interface {
	Publish(ctx context.Context, env Envelope) error
	// Subscribe calls deliver for every envelope until ctx ends.
	Subscribe(ctx context.Context, deliver func(Envelope)) error
}

// Publisher implements ports.RealtimePublisher on top of a Bus.
type Publisher struct {
	bus Bus
}

func NewPublisher(bus Bus) Publisher {
	return Publisher{bus: bus}
}

func (p Publisher) Publish(ctx context.Context, e event.Event) error {
	env, err := NewEnvelope(e)
	if err != nil {
		return err
	}
	return p.bus.Publish(ctx, env)
}

// MemoryBus delivers in process. It serves a single instance.
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers map[int]func(Envelope)
	next        int
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subscribers: make(map[int]func(Envelope))}
}

func (b *MemoryBus) Publish(_ context.Context, env Envelope) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, deliver := range b.subscribers {
		deliver(env)
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, deliver func(Envelope)) error {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subscribers[id] = deliver
	b.mu.Unlock()

	<-ctx.Done()

	b.mu.Lock()
	delete(b.subscribers, id)
	b.mu.Unlock()
	return nil
}
