package kernel_test

import (
	"testing"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	tests := []struct {
		name      string
		lat, lng  float64
		wantError bool
	}{
		{name: "should accept a city coordinate", lat: 19.4326, lng: -99.1332},
		{name: "should accept the origin", lat: 0, lng: 0},
		{name: "should accept the boundaries", lat: -90, lng: 180},
		{name: "should reject latitude above range", lat: 90.0001, lng: 0, wantError: true},
		{name: "should reject longitude below range", lat: 0, lng: -180.5, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := kernel.NewGeoPoint(tt.lat, tt.lng)
			if tt.wantError {
				require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
				return
			}

			require.NoError(t, err)
			require.NoError(t, p.Validate())
			assert.InDelta(t, tt.lat, p.Latitude(), 1e-9)
			assert.InDelta(t, tt.lng, p.Longitude(), 1e-9)
		})
	}

	t.Run("should report both invalid coordinates", func(t *testing.T) {
		_, err := kernel.NewGeoPoint(100, 200)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "latitude")
		assert.Contains(t, err.Error(), "longitude")
	})
}

func TestGeoPoint_IsEqual(t *testing.T) {
	a, _ := kernel.NewGeoPoint(1.5, 2.5)
	b, _ := kernel.NewGeoPoint(1.5, 2.5)
	c, _ := kernel.NewGeoPoint(1.5, 2.6)

	eq, err := a.IsEqual(b)
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = a.IsEqual(c)
	require.NoError(t, err)
	assert.False(t, eq)

	_, err = a.IsEqual(kernel.GeoPoint{})
	assert.ErrorIs(t, err, kernel.ErrGeoPointIsNotConstructed)
}
