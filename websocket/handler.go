package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"golang.org/x/net/websocket"
)

const (
	sendChanSize    = 512
	receiveChanSize = 64
)

// Handler represents a viewport stream handler.
type Handler interface {
	// Handles a client connection.
	HandleConnect(conn *websocket.Conn)

	// Handles a ping request.
	HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles a viewport change by replying with the spots it contains.
	HandleViewport(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles a client's disconnection.
	HandleDisconnect(error)

	// Creates a message receiver used to receive incoming messages.
	Receiver() Receiver

	// Creates a message sender used to send messages.
	Sender() Sender

	// Closes the handler and releases its allocated resources.
	Close()

	// The time a client is idle before being disconnected.
	IdleTimeout() time.Duration

	// Get ClientID
	GetClientID() string
}

// Handle runs the handler on the given connection until the client
// disconnects, stays idle for too long or ctx is done.
func Handle(ctx context.Context, conn *websocket.Conn, h Handler) {
	handler := handler{
		Conn:    conn,
		Handler: h,
	}

	handler.Handle(ctx)
}

type handler struct {
	// The WebSocket connection.
	Conn *websocket.Conn

	// The viewport handler.
	Handler Handler

	sendChan       chan Msg
	receiveChan    chan Msg
	sender         Sender
	receiver       Receiver
	disconnectChan chan error
}

func (h *handler) Handle(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.Handler.HandleConnect(h.Conn)

	h.disconnectChan = make(chan error, 8)
	defer func() {
		for len(h.disconnectChan) != 0 {
			<-h.disconnectChan
		}
	}()

	var wg sync.WaitGroup

	h.sendChan = make(chan Msg, sendChanSize)
	h.sender = h.Handler.Sender()

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.startSending(ctx)
	}()

	h.receiveChan = make(chan Msg, receiveChanSize)
	h.receiver = h.Handler.Receiver()

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.startReceiving(ctx)
	}()

	idleTimeout := h.Handler.IdleTimeout()
	idleTimer := time.NewTimer(idleTimeout)
	defer idleTimer.Stop()

	responder := responseSender(h.send)

	var err error
	for err == nil {
		select {
		case <-ctx.Done():
			err = ctx.Err()

		case <-idleTimer.C:
			err = errors.New("idle connection").WithTag("duration", idleTimeout)

		case msg := <-h.receiveChan:
			idleTimer.Stop()
			idleTimer.Reset(idleTimeout)

			if herr := h.handleMessage(ctx, msg, responder); herr != nil {
				err = errors.New("handling message failed").Wrap(herr)
			}

		case err = <-h.disconnectChan:
		}
	}

	h.Handler.HandleDisconnect(err)

	// Closing the connection unblocks the receiving goroutine.
	h.Conn.Close()
	cancel()
	wg.Wait()
}

func (h *handler) send(msg Msg) {
	select {
	case h.sendChan <- msg:
	default:
		h.disconnect(errors.New("send queue is full").WithTag("msg_type", msg.TypeString()))
	}
}

func (h *handler) startSending(ctx context.Context) {
	defer func() {
		for len(h.sendChan) != 0 {
			<-h.sendChan
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-h.sendChan:
			if _, err := h.sender(msg); err != nil {
				h.disconnect(errors.New("sending message failed").Wrap(err))
				return
			}
		}
	}
}

func (h *handler) startReceiving(ctx context.Context) {
	for {
		msg, _, err := h.receiver()
		if err != nil {
			h.disconnect(errors.New("receiving message failed").Wrap(err))
			return
		}

		select {
		case <-ctx.Done():
			return
		case h.receiveChan <- msg:
		}
	}
}

func (h *handler) handleMessage(ctx context.Context, msg Msg, responder ResponseSender) error {
	switch msg.Type {
	case MsgTypePing:
		return h.Handler.HandlePing(ctx, responder, msg)

	case MsgTypeViewport:
		return h.Handler.HandleViewport(ctx, responder, msg)

	default:
		responder.Send(Msg{
			Type:      MsgTypeError,
			RequestID: msg.RequestID,
			Error:     "unsupported message type: " + msg.TypeString(),
		})
		return nil
	}
}

func (h *handler) disconnect(err error) {
	select {
	case h.disconnectChan <- err:
	default:
	}
}

type responseSender func(Msg)

func (s responseSender) Send(msg Msg) {
	s(msg)
}
