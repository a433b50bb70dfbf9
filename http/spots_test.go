package http

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/aukilabs/spotmap/featureflag"
	"github.com/aukilabs/spotmap/models"
	"github.com/aukilabs/spotmap/quadtree"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *models.SpotStore {
	store, err := models.NewSpotStore(models.WorldRect, 2)
	require.NoError(t, err)

	store.AddAll([]models.Spot{
		{ID: "zuma", Latitude: 34.0402, Longitude: -118.735},
		{ID: "huntington", Latitude: 33.6541, Longitude: -118.0033},
		{ID: "newport", Latitude: 33.6, Longitude: -117.9},
		{ID: "bondi", Latitude: -33.8915, Longitude: 151.2767},
	})
	return store
}

func decodeSpotIDs(t *testing.T, body string) []string {
	var spots []models.Spot
	require.NoError(t, json.Unmarshal([]byte(body), &spots))

	ids := make([]string, len(spots))
	for i, s := range spots {
		ids[i] = s.ID
	}
	sort.Strings(ids)
	return ids
}

func TestHandleSpotsQuery(t *testing.T) {
	h := HandleSpots(newTestStore(t), featureflag.New(nil))

	t.Run("returns the spots in the rectangle", func(t *testing.T) {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/spots?x=-119&y=33&w=2&h=2", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))
		require.Equal(t, []string{"huntington", "newport", "zuma"}, decodeSpotIDs(t, w.Body.String()))
	})

	t.Run("returns an empty array", func(t *testing.T) {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/spots?x=0&y=0&w=1&h=1", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("bad parameters", func(t *testing.T) {
		for _, q := range []string{"", "x=1&y=2&w=3", "x=a&y=0&w=1&h=1", "x=0&y=0&w=-1&h=1"} {
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/spots?"+q, nil))
			require.Equal(t, http.StatusBadRequest, w.Code, q)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodDelete, "/spots", nil))
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestHandleSpotsGeoJSON(t *testing.T) {
	h := HandleSpotsGeoJSON(newTestStore(t))

	t.Run("returns a feature collection", func(t *testing.T) {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/spots.geojson?x=150&y=-35&w=2&h=2", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))
		fc, err := geojson.UnmarshalFeatureCollection(w.Body.Bytes())
		require.NoError(t, err)
		require.Len(t, fc.Features, 1)
		require.Equal(t, "bondi", fc.Features[0].ID)
		require.Equal(t, orb.Point{151.2767, -33.8915}, fc.Features[0].Geometry)
	})

	t.Run("bad parameters", func(t *testing.T) {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/spots.geojson?x=1", nil))
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodPost, "/spots.geojson", nil))
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestHandleSpotsAdd(t *testing.T) {
	t.Run("adds spots", func(t *testing.T) {
		store := newTestStore(t)
		h := HandleSpots(store, featureflag.New(nil))

		body := `[
			{"id":"nazare","latitude":39.6021,"longitude":-9.0710},
			{"id":"mars","latitude":100,"longitude":0}
		]`

		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodPost, "/spots", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"accepted":1,"rejected":1}`, w.Body.String())
		require.Equal(t, 5, store.Len())
		require.Len(t, store.Query(quadtree.NewRect(-10, 39, 2, 2)), 1)
	})

	t.Run("bad body", func(t *testing.T) {
		store := newTestStore(t)
		w := httptest.NewRecorder()
		HandleSpotsAdd(store, featureflag.New(nil))(w, httptest.NewRequest(http.MethodPost, "/spots", strings.NewReader("{")))
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, 4, store.Len())
	})

	t.Run("write api disabled", func(t *testing.T) {
		store := newTestStore(t)
		flags := featureflag.New([]string{string(featureflag.FlagDisableWriteAPI)})

		w := httptest.NewRecorder()
		HandleSpotsAdd(store, flags)(w, httptest.NewRequest(http.MethodPost, "/spots", strings.NewReader("[]")))
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandleStats(t *testing.T) {
	w := httptest.NewRecorder()
	HandleStats(newTestStore(t))(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats quadtree.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Equal(t, 4, stats.Points)
	require.Equal(t, 2, stats.Capacity)
}
