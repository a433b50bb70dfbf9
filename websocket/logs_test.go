package websocket

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/stretchr/testify/require"
)

func TestHandlerWithLogsIncCounter(t *testing.T) {
	h := HandlerWithLogs(&RealtimeHandler{}, time.Second).(*handlerWithLogs)
	defer h.Close()

	h.incCounter("test")
	require.Equal(t, 1, h.counter["test"])
}

func TestHandlerWithLogsLogSummary(t *testing.T) {
	testClientID := "test-client"
	h := HandlerWithLogs(&RealtimeHandler{clientID: testClientID}, time.Second).(*handlerWithLogs)
	defer h.Close()

	h.incCounter(MsgTypeViewport)
	h.incCounter(MsgTypeViewport)
	h.incCounter(MsgTypePing)
	h.addSpotsSent(7)

	var b strings.Builder
	logs.SetInlineEncoder()
	logs.SetLogger(func(e logs.Entry) {
		fmt.Fprint(&b, e)
	})

	h.logSummary()
	require.Empty(t, h.counter)
	require.Zero(t, h.spotsSent)

	logString := b.String()
	require.Contains(t, logString, `"viewport":2`)
	require.Contains(t, logString, `"ping":1`)
	require.Contains(t, logString, `"spots_sent":7`)
	require.Contains(t, logString, fmt.Sprintf(`"%s":"%s"`, clientIDTag, testClientID))
	t.Log(logString)
}

func TestHandlerWithLogsStartSummaryWorker(t *testing.T) {
	var wg sync.WaitGroup
	var once sync.Once

	var mutex sync.Mutex
	var b strings.Builder
	logs.SetInlineEncoder()
	logs.SetLogger(func(e logs.Entry) {
		mutex.Lock()
		defer mutex.Unlock()

		fmt.Fprint(&b, e)
		once.Do(wg.Done)
	})

	wg.Add(1)
	h := HandlerWithLogs(&RealtimeHandler{}, time.Millisecond).(*handlerWithLogs)
	defer h.Close()

	// No summary is logged while no counter is incremented.
	h.incCounter(MsgTypeViewport)

	wg.Wait()

	mutex.Lock()
	out := b.String()
	mutex.Unlock()

	require.NotEmpty(t, out)
	t.Log(out)
}
