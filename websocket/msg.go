package websocket

import (
	"github.com/aukilabs/spotmap/models"
	"github.com/aukilabs/spotmap/quadtree"
)

const (
	MsgTypeViewport = "viewport"
	MsgTypeSpots    = "spots"
	MsgTypePing     = "ping"
	MsgTypePong     = "pong"
	MsgTypeError    = "error"
)

// Msg is a message exchanged over a viewport stream.
type Msg struct {
	Type      string        `json:"type"`
	RequestID uint32        `json:"request_id,omitempty"`
	Rect      *RectMsg      `json:"rect,omitempty"`
	Spots     []models.Spot `json:"spots"`
	Error     string        `json:"error,omitempty"`
}

func (m Msg) TypeString() string {
	if m.Type == "" {
		return "unknown"
	}
	return m.Type
}

// RectMsg is the visible region of a client.
type RectMsg struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r RectMsg) ToRect() quadtree.Rect {
	return quadtree.NewRect(r.X, r.Y, r.W, r.H)
}

// Receiver returns the next message read from a connection and its size in
// bytes.
type Receiver func() (Msg, int, error)

// Sender writes a message to a connection and returns its size in bytes.
type Sender func(Msg) (int, error)

// ResponseSender queues messages to be sent to the client.
type ResponseSender interface {
	Send(Msg)
}
