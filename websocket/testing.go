package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/spotmap/models"
	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

// Creates a testing environment to unit test viewport handlers. It returns a
// connected client and a function that releases the environment.
func NewTestingEnv(t *testing.T, newHandler func() Handler) (*websocket.Conn, func()) {
	var mutex sync.Mutex
	logger := t.Log

	logs.Encoder = func(v any) ([]byte, error) {
		return json.MarshalIndent(v, "", "  ")
	}

	logs.SetLogger(func(e logs.Entry) {
		mutex.Lock()
		defer mutex.Unlock()

		if logger != nil {
			logger(e)
		}
	})

	client, close := newTestingEnv(t, newHandler)
	return client, func() {
		mutex.Lock()
		defer mutex.Unlock()
		logger = nil
		close()
	}
}

func newTestingEnv(t *testing.T, newHandler func() Handler) (*websocket.Conn, func()) {
	server := httptest.NewServer(websocket.Server{
		Handshake: func(c *websocket.Config, r *http.Request) error {
			return nil
		},
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			handler := newHandler()
			defer handler.Close()

			Handle(context.Background(), conn, handler)
		},
	})

	config, err := websocket.NewConfig(
		strings.ReplaceAll(server.URL, "http://", "ws://"),
		"http://localhost",
	)
	if err != nil {
		t.Fatalf("error initializing web socket: %s", err)
	}

	config.Header.Set("User-Agent", "ted")
	config.Header.Set("X-Forwarded-For", "192.0.0.0")
	config.Header.Set(HeaderClientID, uuid.NewString())

	conn, err := websocket.DialConfig(config)
	if err != nil {
		t.Fatalf("error dialing web socket: %s", err)
	}

	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func newTestHandler(store *models.SpotStore, idleTimeout time.Duration) func() Handler {
	return func() Handler {
		var h Handler = &RealtimeHandler{
			Store:             store,
			ClientIdleTimeout: idleTimeout,
		}

		h = HandlerWithLogs(h, time.Millisecond*100)
		h = HandlerWithMetrics(h, "https://spotmap-test.com")
		return h
	}
}

func sendTestMsg(t *testing.T, conn *websocket.Conn, msg Msg) {
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("error encoding message: %s", err)
	}

	if err := websocket.Message.Send(conn, string(b)); err != nil {
		t.Fatalf("error sending message: %s", err)
	}
}

func receiveTestMsg(t *testing.T, conn *websocket.Conn) Msg {
	conn.SetReadDeadline(time.Now().Add(time.Second * 5))

	var s string
	if err := websocket.Message.Receive(conn, &s); err != nil {
		t.Fatalf("error receiving message: %s", err)
	}

	var msg Msg
	if err := json.Unmarshal([]byte(s), &msg); err != nil {
		t.Fatalf("error decoding message: %s", err)
	}
	return msg
}
