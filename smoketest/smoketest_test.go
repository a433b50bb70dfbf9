package smoketest

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aukilabs/spotmap/models"
	swebsocket "github.com/aukilabs/spotmap/websocket"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func newSpotmapServer(t *testing.T, ctx context.Context) *httptest.Server {
	store, err := models.NewSpotStore(models.WorldRect, 3)
	require.NoError(t, err)

	store.AddAll([]models.Spot{
		{ID: "zuma", Latitude: 34.0402, Longitude: -118.735},
		{ID: "newport", Latitude: 33.6, Longitude: -117.9},
		{ID: "hossegor", Latitude: 43.66, Longitude: -1.44},
	})

	server := httptest.NewServer(websocket.Server{
		Handshake: func(c *websocket.Config, r *http.Request) error {
			return nil
		},
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			h := &swebsocket.RealtimeHandler{
				Store:             store,
				ClientIdleTimeout: time.Second,
			}
			defer h.Close()

			swebsocket.Handle(ctx, conn, h)
		},
	})
	t.Cleanup(server.Close)
	return server
}

func TestSmokeTest(t *testing.T) {
	t.Run("smoke test success", func(t *testing.T) {
		// prepare
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		server := newSpotmapServer(t, context.Background())

		ctx = context.WithValue(ctx, testCtxKeyValue, testContext{
			Context: ctx,
			Cancel:  cancel,
		})

		// test
		var gotResult bool
		smokeTest := HandleSmokeTest(ctx, Options{
			Endpoint: "http://localspotmap",
			SendResult: func(_ context.Context, res SmokeTestResults) error {
				require.Equal(t, "http://localspotmap", res.FromEndpoint)
				require.Equal(t, server.URL, res.ToEndpoint)
				require.Equal(t, StatusSuccess, res.Status)
				require.Equal(t, 2, res.Spots)
				gotResult = true
				return nil
			},
		})

		stReq := SmokeTestRequest{
			Endpoint: server.URL,
			Timeout:  time.Second,
			Rect:     &swebsocket.RectMsg{X: -119, Y: 33, W: 2, H: 2},
		}
		body, err := json.Marshal(stReq)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "http://localspotmap", bytes.NewBuffer(body))

		smokeTest.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		<-ctx.Done()

		require.True(t, gotResult)
	})

	t.Run("smoke test failed - offline", func(t *testing.T) {
		// prepare
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		ctx = context.WithValue(ctx, testCtxKeyValue, testContext{
			Context: ctx,
			Cancel:  cancel,
		})

		// test
		var gotResult bool
		smokeTest := HandleSmokeTest(ctx, Options{
			Endpoint: "http://localspotmap",
			SendResult: func(_ context.Context, res SmokeTestResults) error {
				require.Equal(t, "http://localspotmap", res.FromEndpoint)
				require.Equal(t, "http://127.0.0.1:1", res.ToEndpoint)
				require.Equal(t, float64(0), res.LatencyMilliSec)
				require.Equal(t, StatusFailed, res.Status)
				gotResult = true
				return nil
			},
		})

		body, err := json.Marshal(SmokeTestRequest{
			Endpoint: "http://127.0.0.1:1",
			Timeout:  time.Second,
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "http://localspotmap", bytes.NewBuffer(body))

		smokeTest.ServeHTTP(rec, req)

		<-ctx.Done()

		require.True(t, gotResult)
	})

	t.Run("bad request", func(t *testing.T) {
		smokeTest := HandleSmokeTest(context.Background(), Options{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "http://localspotmap", bytes.NewBufferString("{"))

		smokeTest.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestViewportURL(t *testing.T) {
	require.Equal(t, "ws://localhost:4000/viewport", viewportURL("http://localhost:4000/"))
	require.Equal(t, "wss://spotmap.example.com/viewport", viewportURL("https://spotmap.example.com"))
}
