package guard_test

import (
	"errors"
	"testing"

	"lastmile/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStopIsNotConstructed = errors.New("stop must be created via its constructor")

type stop struct {
	name  string
	guard guard.ConstructorGuard
}

func newStop(name string) stop {
	return stop{name: name, guard: guard.NewConstructorGuard()}
}

func (s stop) Validate() error {
	return s.guard.Validate(errStopIsNotConstructed)
}

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("should pass a constructed guard", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errStopIsNotConstructed))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("should return the supplied error for a zero value", func(t *testing.T) {
		var g guard.ConstructorGuard

		assert.ErrorIs(t, g.Validate(errStopIsNotConstructed), errStopIsNotConstructed)
	})

	t.Run("should fall back to the default error", func(t *testing.T) {
		var g guard.ConstructorGuard

		assert.ErrorIs(t, g.Validate(nil), guard.ErrDefaultConstructorGuard)
	})

	t.Run("should tell an embedded zero value from a constructed one", func(t *testing.T) {
		require.NoError(t, newStop("Calle 1").Validate())
		assert.ErrorIs(t, stop{name: "Calle 1"}.Validate(), errStopIsNotConstructed)
	})
}
