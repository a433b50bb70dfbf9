package models

import (
	"testing"

	"github.com/aukilabs/spotmap/quadtree"
	"github.com/aukilabs/spotmap/records"
	"github.com/stretchr/testify/require"
)

func TestNewSpotFromRecord(t *testing.T) {
	t.Run("keeps the record id", func(t *testing.T) {
		spot := NewSpotFromRecord(records.Record{
			ID:        "5842041f4e65fad6a7708816",
			Latitude:  34.0402,
			Longitude: -118.735,
			Name:      "Zuma Beach",
			Kind:      "Spot",
			Region:    "LA County",
			Time:      "6:30",
		})

		require.Equal(t, Spot{
			ID:        "5842041f4e65fad6a7708816",
			Name:      "Zuma Beach",
			Kind:      "Spot",
			Region:    "LA County",
			Time:      "6:30",
			Latitude:  34.0402,
			Longitude: -118.735,
		}, spot)
		require.Equal(t, quadtree.Coordinate{X: -118.735, Y: 34.0402}, spot.Coordinate())
	})

	t.Run("generates a missing id", func(t *testing.T) {
		a := NewSpotFromRecord(records.Record{Name: "a"})
		b := NewSpotFromRecord(records.Record{Name: "b"})
		require.NotEmpty(t, a.ID)
		require.NotEqual(t, a.ID, b.ID)
	})
}

func TestParseRect(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected quadtree.Rect
		err      bool
	}{
		{
			name:     "valid",
			value:    "-118.5, 33.5, 1, 0.5",
			expected: quadtree.NewRect(-118.5, 33.5, 1, 0.5),
		},
		{
			name:  "missing value",
			value: "1,2,3",
			err:   true,
		},
		{
			name:  "not a number",
			value: "1,2,three,4",
			err:   true,
		},
		{
			name:  "negative extent",
			value: "1,2,-3,4",
			err:   true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r, err := ParseRect(test.value)
			if test.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expected, r)
		})
	}
}

func TestSpotQuadrantOrientation(t *testing.T) {
	root, err := quadtree.New(WorldRect, 1)
	require.NoError(t, err)

	bondi := Spot{ID: "bondi", Latitude: -33.8915, Longitude: 151.2767}
	zuma := Spot{ID: "zuma", Latitude: 34.0402, Longitude: -118.735}
	require.Equal(t, 2, root.InsertAll(bondi, zuma))

	// Quadrants are named from the origin at (-180, -90), so the southern
	// hemisphere is on the north side.
	require.Equal(t, []quadtree.Point{bondi}, root.Child(quadtree.NorthEast).Points())
	require.Equal(t, []quadtree.Point{zuma}, root.Child(quadtree.SouthWest).Points())
}
