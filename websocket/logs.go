package websocket

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"golang.org/x/net/websocket"
)

const clientIDTag = "client_id"

func HandlerWithLogs(h Handler, summaryInterval time.Duration) Handler {
	ctx, cancel := context.WithCancel(context.Background())

	handler := &handlerWithLogs{
		Handler:            h,
		summaryInterval:    summaryInterval,
		closeSummaryWorker: cancel,
		counter:            make(map[string]int),
	}

	go handler.startSummaryWorker(ctx)
	return handler
}

type handlerWithLogs struct {
	Handler

	userAgent     string
	xForwardedFor string

	summaryInterval    time.Duration
	closeSummaryWorker func()
	counterMutex       sync.Mutex
	counter            map[string]int
	spotsSent          int
}

func (h *handlerWithLogs) HandleConnect(conn *websocket.Conn) {
	h.Handler.HandleConnect(conn)

	if req := conn.Request(); req != nil {
		h.userAgent = req.UserAgent()
		h.xForwardedFor = req.Header.Get("X-Forwarded-For")
	}

	logs.WithTag(clientIDTag, h.GetClientID()).
		WithTag("user_agent", h.userAgent).
		WithTag("x_forwarded_for", h.xForwardedFor).
		Info("new client is connected")
}

func (h *handlerWithLogs) HandleDisconnect(err error) {
	h.Handler.HandleDisconnect(err)

	entry := logs.WithTag(clientIDTag, h.GetClientID())
	if err != nil && !isClosedConnErr(err) {
		entry = entry.WithTag("reason", err.Error())
	}
	entry.Info("client disconnected")
}

func (h *handlerWithLogs) Receiver() Receiver {
	receive := h.Handler.Receiver()

	return func() (Msg, int, error) {
		msg, n, err := receive()
		if err != nil && !isClosedConnErr(err) {
			logs.WithTag(clientIDTag, h.GetClientID()).
				Error(errors.New("receiving message failed").Wrap(err))
		} else if err == nil {
			logs.WithTag(clientIDTag, h.GetClientID()).
				WithTag("msg_type", msg.TypeString()).
				WithTag("request_id", msg.RequestID).
				Debug("message received")
			h.incCounter(msg.TypeString())
		}
		return msg, n, err
	}
}

func (h *handlerWithLogs) Sender() Sender {
	sender := h.Handler.Sender()

	return func(msg Msg) (int, error) {
		n, err := sender(msg)
		if err != nil && !isClosedConnErr(err) {
			logs.WithTag(clientIDTag, h.GetClientID()).
				WithTag("msg_type", msg.TypeString()).
				Error(errors.New("sending message failed").Wrap(err))
		} else if err == nil {
			logs.WithTag(clientIDTag, h.GetClientID()).
				WithTag("msg_type", msg.TypeString()).
				WithTag("request_id", msg.RequestID).
				WithTag("spot_count", len(msg.Spots)).
				Debug("message sent")
			h.addSpotsSent(len(msg.Spots))
		}
		return n, err
	}
}

func (h *handlerWithLogs) Close() {
	h.Handler.Close()
	h.closeSummaryWorker()
	h.logSummary()
}

func (h *handlerWithLogs) startSummaryWorker(ctx context.Context) {
	ticker := time.NewTicker(h.summaryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			h.logSummary()
		}
	}
}

func (h *handlerWithLogs) incCounter(msgType string) {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	h.counter[msgType]++
}

func (h *handlerWithLogs) addSpotsSent(n int) {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	h.spotsSent += n
}

func (h *handlerWithLogs) logSummary() {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	if len(h.counter) == 0 {
		return
	}

	entry := logs.WithTag(clientIDTag, h.GetClientID()).
		WithTag("time_interval", h.summaryInterval).
		WithTag("spots_sent", h.spotsSent)

	for k, v := range h.counter {
		entry = entry.WithTag(k, v)
		delete(h.counter, k)
	}
	h.spotsSent = 0

	entry.Info("inbound message summary")
}

func isClosedConnErr(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, context.Canceled)
}
