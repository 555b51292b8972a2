package loyalty_test

import (
	"strings"
	"testing"
	"time"

	"lastmile/internal/core/domain/model/client"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/loyalty"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newClient(t *testing.T) *client.Client {
	t.Helper()
	c, err := client.NewClient(kernel.NewUUID(), "Ana", "555", "")
	require.NoError(t, err)
	return c
}

// newOrder builds a delivery order with the given total, shipping included.
func newOrder(t *testing.T, c *client.Client, subtotal string) *order.Order {
	t.Helper()
	item, err := order.NewItem(kernel.NewUUID(), "Vestido", 1, kernel.MustMoney(subtotal))
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), c.ID(), order.Delivery, []*order.Item{item},
		kernel.MustMoney("60"), kernel.NewToken(), now, now.Add(time.Hour))
	require.NoError(t, err)
	return o
}

func TestPointsFor(t *testing.T) {
	tests := []struct {
		total string
		want  int
	}{
		{"250", 25},
		{"99.99", 9},
		{"9.99", 0},
		{"0", 0},
		{"1000.50", 100},
	}
	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			assert.Equal(t, tt.want, loyalty.PointsFor(kernel.MustMoney(tt.total)))
		})
	}
}

func TestAccrue(t *testing.T) {
	t.Run("should credit floor of total over ten and promote", func(t *testing.T) {
		c := newClient(t)
		o := newOrder(t, c, "190") // total 250

		tx, err := loyalty.Accrue(c, o, now)

		require.NoError(t, err)
		require.NotNil(t, tx)
		assert.Equal(t, 25, tx.Points())
		assert.Equal(t, 25, c.CurrentPoints())
		assert.Equal(t, 25, c.LifetimePoints())
		assert.Equal(t, client.CategoryFrequent, c.Category())
		assert.True(t, strings.HasPrefix(tx.Reason(), "Pedido #"))
		assert.True(t, strings.HasSuffix(tx.Reason(), " entregado"))
		assert.True(t, c.ID().IsEqual(tx.ClientID()))
	})

	t.Run("should record nothing for tiny orders", func(t *testing.T) {
		c := newClient(t)
		item, err := order.NewItem(kernel.NewUUID(), "Moño", 1, kernel.MustMoney("5"))
		require.NoError(t, err)
		o, err := order.NewOrder(kernel.NewUUID(), c.ID(), order.PickUp, []*order.Item{item},
			kernel.MustMoney("60"), kernel.NewToken(), now, now.Add(time.Hour))
		require.NoError(t, err)

		tx, err := loyalty.Accrue(c, o, now)

		require.NoError(t, err)
		assert.Nil(t, tx)
		assert.Zero(t, c.CurrentPoints())
	})
}

func TestOnStatusChange(t *testing.T) {
	t.Run("should accrue and reverse the same amount", func(t *testing.T) {
		c := newClient(t)
		o := newOrder(t, c, "190")

		credit, err := loyalty.OnStatusChange(c, o, order.InRoute, order.Delivered, now)
		require.NoError(t, err)
		debit, err := loyalty.OnStatusChange(c, o, order.Delivered, order.Pending, now)
		require.NoError(t, err)

		require.NotNil(t, credit)
		require.NotNil(t, debit)
		assert.Equal(t, 25, credit.Points())
		assert.Equal(t, -25, debit.Points())
		assert.Zero(t, c.CurrentPoints())
		assert.Zero(t, c.LifetimePoints())
		assert.Equal(t, client.CategoryFrequent, c.Category())
	})

	t.Run("should stay silent for other moves", func(t *testing.T) {
		c := newClient(t)
		o := newOrder(t, c, "190")

		for _, pair := range [][2]order.Status{
			{order.Pending, order.InRoute},
			{order.Delivered, order.Delivered},
			{order.InRoute, order.NotDelivered},
		} {
			tx, err := loyalty.OnStatusChange(c, o, pair[0], pair[1], now)
			require.NoError(t, err)
			assert.Nil(t, tx)
		}
		assert.Zero(t, c.LifetimePoints())
		assert.Equal(t, client.CategoryNew, c.Category())
	})

	t.Run("should clamp reversals of spent points", func(t *testing.T) {
		c, err := client.RestoreClient(kernel.NewUUID(), "Ana", "555", "", "Frecuente", 10, 25)
		require.NoError(t, err)
		o := newOrder(t, c, "190")

		tx, err := loyalty.OnStatusChange(c, o, order.Delivered, order.Canceled, now)

		require.NoError(t, err)
		assert.Equal(t, -25, tx.Points())
		assert.Zero(t, c.CurrentPoints())
		assert.Zero(t, c.LifetimePoints())
	})
}

func TestAdjust(t *testing.T) {
	t.Run("should record gifts", func(t *testing.T) {
		c := newClient(t)

		tx, err := loyalty.Adjust(c, 40, " Regalo de cumpleaños ", now)

		require.NoError(t, err)
		assert.Equal(t, "Regalo de cumpleaños", tx.Reason())
		assert.Equal(t, 40, c.LifetimePoints())
	})

	t.Run("should refuse overdrafts without touching balances", func(t *testing.T) {
		c := newClient(t)

		_, err := loyalty.Adjust(c, -5, "Canje", now)

		require.ErrorIs(t, err, errs.ErrInvalidState)
		assert.Zero(t, c.CurrentPoints())
	})

	t.Run("should require a reason and non-zero points", func(t *testing.T) {
		c := newClient(t)

		_, err := loyalty.Adjust(c, 0, "", now)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestTiers(t *testing.T) {
	assert.Equal(t, "Clienta Pink", loyalty.TierFor(0).Name)
	assert.Equal(t, "Clienta Rose Gold", loyalty.TierFor(100).Name)
	assert.Equal(t, "Clienta Diamante", loyalty.TierFor(300).Name)

	missing, ok := loyalty.PointsToNextTier(40)
	assert.True(t, ok)
	assert.Equal(t, 60, missing)

	missing, ok = loyalty.PointsToNextTier(150)
	assert.True(t, ok)
	assert.Equal(t, 150, missing)

	_, ok = loyalty.PointsToNextTier(300)
	assert.False(t, ok)
}
