package models

import (
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/spotmap/quadtree"
	"github.com/google/uuid"
)

// SpotStore is a spot index safe for concurrent use. Inserts are serialized
// and exclude queries; queries run concurrently with each other.
type SpotStore struct {
	UUID string

	mutex    sync.RWMutex
	root     *quadtree.Node
	universe quadtree.Rect
}

func NewSpotStore(universe quadtree.Rect, capacity int) (*SpotStore, error) {
	root, err := quadtree.New(universe, capacity)
	if err != nil {
		return nil, err
	}

	return &SpotStore{
		UUID:     uuid.NewString(),
		root:     root,
		universe: universe,
	}, nil
}

// Universe returns the rectangle covered by the store.
func (s *SpotStore) Universe() quadtree.Rect {
	return s.universe
}

// Add indexes the spot. It returns false when the spot lies outside of the
// store universe.
func (s *SpotStore) Add(spot Spot) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.add(spot)
}

// AddAll indexes the spots and returns how many were accepted.
func (s *SpotStore) AddAll(spots []Spot) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var accepted int
	for _, spot := range spots {
		if s.add(spot) {
			accepted++
		}
	}
	return accepted
}

func (s *SpotStore) add(spot Spot) bool {
	if !s.root.Insert(spot) {
		logs.WithTag("store_uuid", s.UUID).
			WithTag("spot_id", spot.ID).
			WithTag("latitude", spot.Latitude).
			WithTag("longitude", spot.Longitude).
			Debug("spot rejected: outside of universe")
		instrumentSpotInsert(insertResultRejected)
		return false
	}

	instrumentSpotInsert(insertResultAccepted)
	instrumentIncreaseSpotGauge()
	return true
}

// Query returns the spots located in r. The result is empty, never nil, when
// nothing matches.
func (s *SpotStore) Query(r quadtree.Rect) []Spot {
	start := time.Now()

	s.mutex.RLock()
	points := s.root.Query(r)
	s.mutex.RUnlock()

	spots := make([]Spot, len(points))
	for i, p := range points {
		spots[i] = p.(Spot)
	}

	instrumentSpotQuery(start, len(spots))
	return spots
}

// Len returns the number of indexed spots.
func (s *SpotStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.root.Len()
}

// Stats returns the shape of the underlying index.
func (s *SpotStore) Stats() quadtree.Stats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.root.Stats()
}
