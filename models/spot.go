package models

import (
	"strconv"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/spotmap/quadtree"
	"github.com/aukilabs/spotmap/records"
	"github.com/google/uuid"
)

// WorldRect is the longitude/latitude universe. X is the longitude and Y the
// latitude, no projection is applied.
var WorldRect = quadtree.NewRect(-180, -90, 360, 180)

// Spot is an indexed place.
type Spot struct {
	ID        string  `json:"id"`
	Name      string  `json:"name,omitempty"`
	Kind      string  `json:"kind,omitempty"`
	Region    string  `json:"region,omitempty"`
	Time      string  `json:"time,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewSpotFromRecord converts a data file record to a spot. Records without an
// id get a random one.
func NewSpotFromRecord(r records.Record) Spot {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}

	return Spot{
		ID:        id,
		Name:      r.Name,
		Kind:      r.Kind,
		Region:    r.Region,
		Time:      r.Time,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

func (s Spot) Coordinate() quadtree.Coordinate {
	return quadtree.Coordinate{X: s.Longitude, Y: s.Latitude}
}

// ParseRect parses a "x,y,width,height" rectangle.
func ParseRect(v string) (quadtree.Rect, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 4 {
		return quadtree.Rect{}, errors.New("rectangle must be formatted as x,y,width,height").
			WithTag("value", v)
	}

	var values [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return quadtree.Rect{}, errors.New("invalid rectangle value").
				WithTag("value", v).
				WithTag("index", i).
				Wrap(err)
		}
		values[i] = f
	}

	if values[2] < 0 || values[3] < 0 {
		return quadtree.Rect{}, errors.New("rectangle extents must not be negative").
			WithTag("value", v)
	}

	return quadtree.NewRect(values[0], values[1], values[2], values[3]), nil
}
