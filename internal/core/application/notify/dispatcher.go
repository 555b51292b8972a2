// Package notify delivers the events of committed commands to their
// audiences: the real-time channel, mobile push and the staff broadcast.
//
// Every channel is best effort. Failures are logged at Warn and never reach
// the command that produced the events.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"lastmile/internal/core/domain/model/event"
	"lastmile/internal/core/domain/model/subscription"
	"lastmile/internal/core/ports"
)

// Dispatcher implements commands.Notifier.
type Dispatcher struct {
	realtime      ports.RealtimePublisher
	subscriptions ports.PushSubscriptionRepository
	push          ports.PushSender
	staff         ports.StaffNotifier
	logger        *slog.Logger
	baseURL       string
	now           func() time.Time
	inflight      sync.WaitGroup
}

// Option configures optional channels of a Dispatcher.
type Option func(*Dispatcher)

// WithPush enables mobile push through sender.
func WithPush(sender ports.PushSender) Option {
	return func(d *Dispatcher) {
		d.push = sender
	}
}

// WithStaffNotifier mirrors staff events to n.
func WithStaffNotifier(n ports.StaffNotifier) Option {
	return func(d *Dispatcher) {
		d.staff = n
	}
}

// WithPublicBaseURL resolves site-relative push links such as
// "/pedido/<token>" against base. Web push only opens absolute HTTPS links.
func WithPublicBaseURL(base string) Option {
	return func(d *Dispatcher) {
		d.baseURL = strings.TrimRight(base, "/")
	}
}

// WithClock replaces the clock used to touch push subscriptions.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

func NewDispatcher(
	realtime ports.RealtimePublisher,
	subscriptions ports.PushSubscriptionRepository,
	logger *slog.Logger,
	opts ...Option,
) *Dispatcher {
	d := &Dispatcher{
		realtime:      realtime,
		subscriptions: subscriptions,
		logger:        logger.With("component", "notify_dispatcher"),
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify dispatches events in the background. The request context may end
// before delivery does, so only its values are kept.
func (d *Dispatcher) Notify(ctx context.Context, events []event.Event) {
	if len(events) == 0 {
		return
	}

	detached := context.WithoutCancel(ctx)
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		d.Dispatch(detached, events)
	}()
}

// Wait blocks until every background dispatch has finished.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

// Dispatch delivers events in order on every channel they ask for.
func (d *Dispatcher) Dispatch(ctx context.Context, events []event.Event) {
	for _, e := range events {
		if err := d.realtime.Publish(ctx, e); err != nil {
			d.warn(ctx, "Real-time publish failed", e, err)
		}

		if e.Push != nil && d.push != nil {
			d.sendPush(ctx, e)
		}

		if e.Audience == event.Staff && d.staff != nil {
			if text, ok := staffText(e); ok {
				if err := d.staff.NotifyStaff(ctx, text); err != nil {
					d.warn(ctx, "Staff broadcast failed", e, err)
				}
			}
		}
	}
}

func (d *Dispatcher) sendPush(ctx context.Context, e event.Event) {
	devices, err := d.devices(ctx, e)
	if err != nil {
		d.warn(ctx, "Push recipients lookup failed", e, err)
		return
	}
	if len(devices) == 0 {
		return
	}

	push := *e.Push
	push.Link = d.absoluteLink(push.Link)
	data := map[string]string{"type": string(e.Type)}
	if push.Link != "" {
		data["link"] = push.Link
	}

	delivered := make([]string, 0, len(devices))
	for _, s := range devices {
		err = d.push.Send(ctx, s.DeviceToken(), push, data)
		switch {
		case err == nil:
			delivered = append(delivered, s.DeviceToken())
		case errors.Is(err, ports.ErrDeviceTokenIsGone):
			if err = d.subscriptions.DeleteByDeviceToken(ctx, s.DeviceToken()); err != nil {
				d.warn(ctx, "Pruning push subscription failed", e, err)
			}
		default:
			d.warn(ctx, "Push send failed", e, err)
		}
	}

	if err = d.subscriptions.Touch(ctx, delivered, d.now()); err != nil {
		d.warn(ctx, "Touching push subscriptions failed", e, err)
	}
}

func (d *Dispatcher) absoluteLink(link string) string {
	if d.baseURL == "" || !strings.HasPrefix(link, "/") {
		return link
	}
	return d.baseURL + link
}

// devices resolves the push audience of e.
func (d *Dispatcher) devices(ctx context.Context, e event.Event) ([]*subscription.Subscription, error) {
	switch e.Audience {
	case event.Customer:
		if e.Push.ClientID == nil {
			return nil, nil
		}
		return d.subscriptions.FindByClient(ctx, *e.Push.ClientID)
	case event.Driver:
		if e.Push.RouteToken.IsEmpty() {
			return nil, nil
		}
		return d.subscriptions.FindByRouteToken(ctx, e.Push.RouteToken)
	case event.Staff:
		return d.subscriptions.FindByRole(ctx, subscription.AdminRole)
	default:
		return nil, fmt.Errorf("unknown audience %d", e.Audience)
	}
}

func (d *Dispatcher) warn(ctx context.Context, msg string, e event.Event, err error) {
	d.logger.WarnContext(ctx, msg,
		"audience", e.Audience.String(),
		"key", e.Key,
		"event", string(e.Type),
		"error", err)
}
