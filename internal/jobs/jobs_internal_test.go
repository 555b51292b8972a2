package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSubscriptions struct{ mock.Mock }

func (m *MockSubscriptions) Upsert(ctx context.Context, s *subscription.Subscription) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSubscriptions) DeleteByDeviceToken(ctx context.Context, deviceToken string) error {
	return m.Called(ctx, deviceToken).Error(0)
}

func (m *MockSubscriptions) FindByClient(context.Context, kernel.UUID) ([]*subscription.Subscription, error) {
	return nil, nil
}

func (m *MockSubscriptions) FindByRouteToken(context.Context, kernel.Token) ([]*subscription.Subscription, error) {
	return nil, nil
}

func (m *MockSubscriptions) FindByRole(context.Context, subscription.Role) ([]*subscription.Subscription, error) {
	return nil, nil
}

func (m *MockSubscriptions) Touch(ctx context.Context, deviceTokens []string, at time.Time) error {
	return m.Called(ctx, deviceTokens, at).Error(0)
}

func (m *MockSubscriptions) DeleteUnusedSince(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type countingPinger struct{ calls atomic.Int32 }

func (p *countingPinger) Ping() int {
	p.calls.Add(1)
	return 3
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestPushPruneJob_run(t *testing.T) {
	t.Run("should delete subscriptions unused for longer than the ttl", func(t *testing.T) {
		repo := &MockSubscriptions{}
		ttl := 60 * 24 * time.Hour
		before := time.Now().UTC().Add(-ttl)
		repo.On("DeleteUnusedSince", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
			return !cutoff.Before(before) && cutoff.Before(time.Now().UTC().Add(-ttl+time.Minute))
		})).Return(int64(4), nil).Once()

		NewPushPruneJob(commands.NewPrunePushSubscriptionsCommandHandler(repo), ttl, discard).run()

		repo.AssertExpectations(t)
	})

	t.Run("should survive a failing repository", func(t *testing.T) {
		repo := &MockSubscriptions{}
		repo.On("DeleteUnusedSince", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down")).Once()

		assert.NotPanics(t, func() {
			NewPushPruneJob(commands.NewPrunePushSubscriptionsCommandHandler(repo), time.Hour, discard).run()
		})
		repo.AssertExpectations(t)
	})

	t.Run("should not touch the repository with an invalid ttl", func(t *testing.T) {
		repo := &MockSubscriptions{}

		NewPushPruneJob(commands.NewPrunePushSubscriptionsCommandHandler(repo), 0, discard).run()

		repo.AssertNotCalled(t, "DeleteUnusedSince", mock.Anything, mock.Anything)
	})
}

func TestHubKeepaliveJob_run(t *testing.T) {
	hub := &countingPinger{}

	NewHubKeepaliveJob(hub, discard).run()

	assert.Equal(t, int32(1), hub.calls.Load())
}

func TestJobManager_StartStop(t *testing.T) {
	repo := &MockSubscriptions{}
	manager := NewJobManager(commands.NewPrunePushSubscriptionsCommandHandler(repo), time.Hour, &countingPinger{}, discard)

	require.NoError(t, manager.StartAll())
	manager.StopAll()
}
