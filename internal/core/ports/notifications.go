package ports

import (
	"context"
	"errors"
	"io"

	"lastmile/internal/core/domain/model/event"
)

// ErrDeviceTokenIsGone is returned by a PushSender when the device will never
// accept messages again. The dispatcher prunes the subscription.
var ErrDeviceTokenIsGone = errors.New("device token is no longer valid")

// RealtimePublisher delivers an event to every session joined to its group key.
type RealtimePublisher interface {
	Publish(ctx context.Context, e event.Event) error
}

// PushSender delivers one push notification to one device.
type PushSender interface {
	Send(ctx context.Context, deviceToken string, push event.Push, data map[string]string) error
}

// StaffNotifier mirrors staff-facing events to an out-of-band channel.
type StaffNotifier interface {
	NotifyStaff(ctx context.Context, text string) error
}

// EvidenceStore keeps delivery photos and returns their public URL.
type EvidenceStore interface {
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
}
