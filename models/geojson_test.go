package models

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func TestNewFeatureCollection(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		fc := NewFeatureCollection(nil)
		require.Empty(t, fc.Features)

		b, err := fc.MarshalJSON()
		require.NoError(t, err)
		require.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(b))
	})

	t.Run("spots", func(t *testing.T) {
		fc := NewFeatureCollection([]Spot{
			{ID: "zuma", Name: "Zuma Beach", Region: "LA County", Latitude: 34.0402, Longitude: -118.735},
			{ID: "bondi", Latitude: -33.8915, Longitude: 151.2767},
		})
		require.Len(t, fc.Features, 2)

		zuma := fc.Features[0]
		require.Equal(t, "zuma", zuma.ID)
		require.Equal(t, orb.Point{-118.735, 34.0402}, zuma.Geometry)
		require.Equal(t, "Zuma Beach", zuma.Properties.MustString("name"))
		require.Equal(t, "LA County", zuma.Properties.MustString("region"))
		_, ok := zuma.Properties["kind"]
		require.False(t, ok)

		bondi := fc.Features[1]
		require.Equal(t, orb.Point{151.2767, -33.8915}, bondi.Geometry)
		require.Empty(t, bondi.Properties)
	})
}
