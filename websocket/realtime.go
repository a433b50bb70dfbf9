package websocket

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/spotmap/models"
	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

const (
	ErrTypeInvalidViewport = "invalid_viewport"

	// HeaderClientID is the header a client can use to identify itself.
	HeaderClientID = "X-Spotmap-Client-Id"
)

// RealtimeHandler answers viewport changes with the spots they contain.
type RealtimeHandler struct {
	// The store queried on viewport changes.
	Store *models.SpotStore

	// The time a client is idle before being disconnected.
	ClientIdleTimeout time.Duration

	conn     *websocket.Conn
	clientID string
}

func (h *RealtimeHandler) HandleConnect(conn *websocket.Conn) {
	h.conn = conn

	if req := conn.Request(); req != nil {
		h.clientID = req.Header.Get(HeaderClientID)
	}
	if h.clientID == "" {
		h.clientID = uuid.NewString()
	}
}

func (h *RealtimeHandler) HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error {
	respond.Send(Msg{
		Type:      MsgTypePong,
		RequestID: msg.RequestID,
	})
	return nil
}

func (h *RealtimeHandler) HandleViewport(ctx context.Context, respond ResponseSender, msg Msg) error {
	if err := validateViewport(msg); err != nil {
		logs.WithTag(clientIDTag, h.clientID).Debug(err)

		respond.Send(Msg{
			Type:      MsgTypeError,
			RequestID: msg.RequestID,
			Error:     err.Error(),
		})
		return nil
	}

	respond.Send(Msg{
		Type:      MsgTypeSpots,
		RequestID: msg.RequestID,
		Spots:     h.Store.Query(msg.Rect.ToRect()),
	})
	return nil
}

func (h *RealtimeHandler) HandleDisconnect(err error) {
}

func (h *RealtimeHandler) Receiver() Receiver {
	return func() (Msg, int, error) {
		var b []byte
		if err := websocket.Message.Receive(h.conn, &b); err != nil {
			return Msg{}, 0, err
		}

		var msg Msg
		if err := json.Unmarshal(b, &msg); err != nil {
			return Msg{}, len(b), errors.New("decoding message failed").Wrap(err)
		}
		return msg, len(b), nil
	}
}

func (h *RealtimeHandler) Sender() Sender {
	return func(msg Msg) (int, error) {
		b, err := json.Marshal(msg)
		if err != nil {
			return 0, errors.New("encoding message failed").Wrap(err)
		}

		if err := websocket.Message.Send(h.conn, string(b)); err != nil {
			return 0, err
		}
		return len(b), nil
	}
}

func (h *RealtimeHandler) Close() {
}

func (h *RealtimeHandler) IdleTimeout() time.Duration {
	return h.ClientIdleTimeout
}

func (h *RealtimeHandler) GetClientID() string {
	return h.clientID
}

func validateViewport(msg Msg) error {
	if msg.Rect == nil {
		return errors.New("invalid viewport: missing rect").
			WithType(ErrTypeInvalidViewport).
			WithTag("request_id", msg.RequestID)
	}
	if !(msg.Rect.W >= 0) || !(msg.Rect.H >= 0) {
		return errors.New("invalid viewport: negative extent").
			WithType(ErrTypeInvalidViewport).
			WithTag("request_id", msg.RequestID).
			WithTag("w", msg.Rect.W).
			WithTag("h", msg.Rect.H)
	}
	return nil
}
