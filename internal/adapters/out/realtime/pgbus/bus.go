// Package pgbus carries real-time envelopes over Postgres LISTEN/NOTIFY, so
// several instances can share groups without extra infrastructure.
package pgbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"lastmile/internal/adapters/out/realtime"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// DefaultChannel is the NOTIFY channel shared by every instance.
const DefaultChannel = "lastmile_realtime"

// NOTIFY payloads above this size are rejected by Postgres.
const maxPayload = 8000

const (
	minReconnect = 10 * time.Second
	maxReconnect = time.Minute
	pingInterval = 90 * time.Second
)

type Bus struct {
	db      *gorm.DB
	dsn     string
	channel string
	logger  *slog.Logger
}

// New publishes through db and listens on a dedicated connection to dsn.
func New(db *gorm.DB, dsn, channel string, logger *slog.Logger) *Bus {
	return &Bus{db: db, dsn: dsn, channel: channel, logger: logger.With("component", "pgbus")}
}

func (b *Bus) Publish(ctx context.Context, env realtime.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if len(data) > maxPayload {
		return fmt.Errorf("envelope of %d bytes exceeds the notify limit", len(data))
	}
	return b.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", b.channel, string(data)).Error
}

// Subscribe listens until ctx ends. The listener reconnects on its own; a
// nil notification marks a reconnect, after which missed envelopes are gone.
func (b *Bus) Subscribe(ctx context.Context, deliver func(realtime.Envelope)) error {
	listener := pq.NewListener(b.dsn, minReconnect, maxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			b.logger.Warn("Listener event", "event", int(ev), "error", err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(b.channel); err != nil {
		return fmt.Errorf("listening on %s: %w", pq.QuoteIdentifier(b.channel), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				b.logger.Info("Listener reconnected")
				continue
			}
			var env realtime.Envelope
			if err := json.Unmarshal([]byte(n.Extra), &env); err != nil {
				continue
			}
			deliver(env)
		case <-time.After(pingInterval):
			if err := listener.Ping(); err != nil {
				b.logger.Warn("Listener ping failed", "error", err)
			}
		}
	}
}
