package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	httpcmn "github.com/aukilabs/hagall-common/http"
	"github.com/aukilabs/spotmap/featureflag"
	"github.com/aukilabs/spotmap/models"
	"github.com/aukilabs/spotmap/quadtree"
	"github.com/segmentio/encoding/json"
)

const maxAddBodySize = 32 << 20

type AddSpotsResponse struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// HandleSpots serves range queries on GET and spot insertions on POST.
func HandleSpots(store *models.SpotStore, flags featureflag.FeatureFlag) http.HandlerFunc {
	query := HandleSpotsQuery(store)
	add := HandleSpotsAdd(store, flags)

	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			query(w, r)

		case http.MethodPost:
			add(w, r)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

// HandleSpotsQuery returns the spots located in the rectangle described by
// the x, y, w and h query parameters.
func HandleSpotsQuery(store *models.SpotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rect, err := rectFromQuery(r)
		if err != nil {
			logs.WithTag("query", r.URL.RawQuery).Debug(err)
			httpcmn.BadRequest(w, httpcmn.ErrBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, store.Query(rect))
	}
}

// HandleSpotsGeoJSON returns the spots located in the rectangle described by
// the x, y, w and h query parameters as a GeoJSON feature collection.
func HandleSpotsGeoJSON(store *models.SpotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		rect, err := rectFromQuery(r)
		if err != nil {
			logs.WithTag("query", r.URL.RawQuery).Debug(err)
			httpcmn.BadRequest(w, httpcmn.ErrBadRequest)
			return
		}

		b, err := models.NewFeatureCollection(store.Query(rect)).MarshalJSON()
		if err != nil {
			httpcmn.InternalServerError(w, errors.New("encoding feature collection failed").Wrap(err))
			return
		}

		w.Header().Set("Content-Type", "application/geo+json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

// HandleSpotsAdd indexes the JSON array of spots sent in the request body.
func HandleSpotsAdd(store *models.SpotStore, flags featureflag.FeatureFlag) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if flags.IsSet(featureflag.FlagDisableWriteAPI) {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		b, err := io.ReadAll(io.LimitReader(r.Body, maxAddBodySize))
		if err != nil {
			httpcmn.InternalServerError(w, errors.New("reading body failed").Wrap(err))
			return
		}

		var spots []models.Spot
		if err := json.Unmarshal(b, &spots); err != nil {
			httpcmn.BadRequest(w, httpcmn.ErrBadRequest)
			return
		}

		accepted := store.AddAll(spots)

		logs.WithTag("store_uuid", store.UUID).
			WithTag("accepted", accepted).
			WithTag("rejected", len(spots)-accepted).
			Debug("spots added")

		writeJSON(w, http.StatusOK, AddSpotsResponse{
			Accepted: accepted,
			Rejected: len(spots) - accepted,
		})
	}
}

// HandleStats returns the shape of the spot index.
func HandleStats(store *models.SpotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.Stats())
	}
}

func rectFromQuery(r *http.Request) (quadtree.Rect, error) {
	q := r.URL.Query()

	var values [4]float64
	for i, name := range []string{"x", "y", "w", "h"} {
		v := q.Get(name)
		if v == "" {
			return quadtree.Rect{}, errors.New("missing query parameter").
				WithTag("name", name)
		}

		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return quadtree.Rect{}, errors.New("invalid query parameter").
				WithTag("name", name).
				WithTag("value", v).
				Wrap(err)
		}
		values[i] = f
	}

	if values[2] < 0 || values[3] < 0 {
		return quadtree.Rect{}, errors.New("negative rectangle extent").
			WithTag("w", values[2]).
			WithTag("h", values[3])
	}

	return quadtree.NewRect(values[0], values[1], values[2], values[3]), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		httpcmn.InternalServerError(w, errors.New("encoding response failed").Wrap(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}
