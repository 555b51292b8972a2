package client_test

import (
	"testing"

	"lastmile/internal/core/domain/model/client"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *client.Client {
	t.Helper()
	c, err := client.NewClient(kernel.NewUUID(), "Ana", "5551234567", "Calle 1")
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	t.Run("should create a Nueva client with empty balances", func(t *testing.T) {
		c := newClient(t)

		require.NoError(t, c.Validate())
		assert.Equal(t, client.CategoryNew, c.Category())
		assert.Zero(t, c.CurrentPoints())
		assert.Zero(t, c.LifetimePoints())
	})

	t.Run("should join validation errors", func(t *testing.T) {
		c, err := client.NewClient(kernel.UUID{}, " ", "", "")

		assert.Nil(t, c)
		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
		require.ErrorIs(t, err, client.ErrNameIsRequired)
		require.ErrorIs(t, err, client.ErrPhoneIsRequired)
	})

	t.Run("zero value should be invalid", func(t *testing.T) {
		var c client.Client
		require.ErrorIs(t, c.Validate(), client.ErrClientIsNotConstructed)
	})
}

func TestRestoreClient(t *testing.T) {
	t.Run("should keep persisted balances", func(t *testing.T) {
		c, err := client.RestoreClient(kernel.NewUUID(), "Ana", "555", "", "VIP", 40, 120)

		require.NoError(t, err)
		assert.Equal(t, "VIP", c.Category())
		assert.Equal(t, 40, c.CurrentPoints())
		assert.Equal(t, 120, c.LifetimePoints())
	})

	t.Run("should reject negative balances", func(t *testing.T) {
		_, err := client.RestoreClient(kernel.NewUUID(), "Ana", "555", "", "Nueva", -1, 0)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestClient_Points(t *testing.T) {
	t.Run("should credit both balances", func(t *testing.T) {
		c := newClient(t)

		require.NoError(t, c.Credit(25))

		assert.Equal(t, 25, c.CurrentPoints())
		assert.Equal(t, 25, c.LifetimePoints())
	})

	t.Run("should clamp debits at zero", func(t *testing.T) {
		c, err := client.RestoreClient(kernel.NewUUID(), "Ana", "555", "", "Frecuente", 10, 30)
		require.NoError(t, err)

		require.NoError(t, c.Debit(25))

		assert.Zero(t, c.CurrentPoints())
		assert.Equal(t, 5, c.LifetimePoints())
	})

	t.Run("should reject non positive credits", func(t *testing.T) {
		c := newClient(t)
		require.ErrorIs(t, c.Credit(0), errs.ErrValueIsOutOfRange)
		require.ErrorIs(t, c.Debit(-3), errs.ErrValueIsOutOfRange)
	})
}

func TestClient_Adjust(t *testing.T) {
	t.Run("should raise lifetime on positive adjustments", func(t *testing.T) {
		c := newClient(t)

		require.NoError(t, c.Adjust(50))

		assert.Equal(t, 50, c.CurrentPoints())
		assert.Equal(t, 50, c.LifetimePoints())
	})

	t.Run("should keep lifetime on redemptions", func(t *testing.T) {
		c := newClient(t)
		require.NoError(t, c.Adjust(50))

		require.NoError(t, c.Adjust(-20))

		assert.Equal(t, 30, c.CurrentPoints())
		assert.Equal(t, 50, c.LifetimePoints())
	})

	t.Run("should refuse to overdraw", func(t *testing.T) {
		c := newClient(t)

		err := c.Adjust(-1)

		require.ErrorIs(t, err, errs.ErrInvalidState)
		assert.Zero(t, c.CurrentPoints())
	})

	t.Run("should refuse zero", func(t *testing.T) {
		require.ErrorIs(t, newClient(t).Adjust(0), errs.ErrValueIsInvalid)
	})
}

func TestClient_PromoteToFrequent(t *testing.T) {
	t.Run("should promote Nueva clients once", func(t *testing.T) {
		c := newClient(t)

		assert.True(t, c.PromoteToFrequent())
		assert.False(t, c.PromoteToFrequent())
		assert.Equal(t, client.CategoryFrequent, c.Category())
	})

	t.Run("should leave custom categories alone", func(t *testing.T) {
		c := newClient(t)
		require.NoError(t, c.Recategorize("Mayorista"))

		assert.False(t, c.PromoteToFrequent())
		assert.Equal(t, "Mayorista", c.Category())
	})
}

func TestClient_UpdateContact(t *testing.T) {
	c := newClient(t)

	c.UpdateContact("", "Av. Reforma 10")

	assert.Equal(t, "Ana", c.Name())
	assert.Equal(t, "Av. Reforma 10", c.Address())
}

func TestClient_ChangeContact(t *testing.T) {
	t.Run("should overwrite every contact field", func(t *testing.T) {
		c := newClient(t)

		require.NoError(t, c.ChangeContact(" Ana María ", "5559876543", ""))

		assert.Equal(t, "Ana María", c.Name())
		assert.Equal(t, "5559876543", c.Phone())
		assert.Empty(t, c.Address())
	})

	t.Run("should keep the old data when name or phone is blank", func(t *testing.T) {
		c := newClient(t)

		err := c.ChangeContact("", " ", "Calle 9")

		require.ErrorIs(t, err, client.ErrNameIsRequired)
		require.ErrorIs(t, err, client.ErrPhoneIsRequired)
		assert.Equal(t, "Ana", c.Name())
		assert.Equal(t, "5551234567", c.Phone())
		assert.Equal(t, "Calle 1", c.Address())
	})
}
