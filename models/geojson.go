package models

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Point returns the spot location as a longitude/latitude point.
func (s Spot) Point() orb.Point {
	return orb.Point{s.Longitude, s.Latitude}
}

// NewFeatureCollection converts spots to GeoJSON point features. Empty
// properties are omitted.
func NewFeatureCollection(spots []Spot) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, s := range spots {
		f := geojson.NewFeature(s.Point())
		f.ID = s.ID

		for k, v := range map[string]string{
			"name":   s.Name,
			"kind":   s.Kind,
			"region": s.Region,
			"time":   s.Time,
		} {
			if v != "" {
				f.Properties[k] = v
			}
		}

		fc.Append(f)
	}
	return fc
}
