package smoketest

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	httpcmn "github.com/aukilabs/hagall-common/http"
	swebsocket "github.com/aukilabs/spotmap/websocket"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"

	// DefaultTimeout is used when a request does not specify a timeout.
	DefaultTimeout = time.Second * 10

	smokeTestRequestID = 1
)

// SmokeTestRequest asks a server to query the viewport stream of another
// spotmap server.
type SmokeTestRequest struct {
	Endpoint string              `json:"endpoint"`
	Timeout  time.Duration       `json:"timeout"`
	Rect     *swebsocket.RectMsg `json:"rect,omitempty"`
}

// SmokeTestResults describes the outcome of a smoke test.
type SmokeTestResults struct {
	FromEndpoint    string  `json:"from_endpoint"`
	ToEndpoint      string  `json:"to_endpoint"`
	Status          string  `json:"status"`
	LatencyMilliSec float64 `json:"latency_ms"`
	Spots           int     `json:"spots"`
}

type Options struct {
	Endpoint   string
	UserAgent  string
	SendResult func(context.Context, SmokeTestResults) error
}

type testCtxKey string

var testCtxKeyValue testCtxKey = "test-context"

type testContext struct {
	context.Context
	Cancel func()
}

func HandleSmokeTest(ctx context.Context, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			httpcmn.InternalServerError(w, errors.New("reading body failed").Wrap(err))
			return
		}

		var req SmokeTestRequest
		if err := json.Unmarshal(b, &req); err != nil || req.Endpoint == "" {
			httpcmn.BadRequest(w, httpcmn.ErrBadRequest)
			return
		}

		go func() {
			defer func() {
				// if context is of testContext
				// cancel context on exit to signal function exited
				// this is used for testing
				if tctx := ctx.Value(testCtxKeyValue); tctx != nil {
					testCtx := tctx.(testContext)
					if testCtx.Cancel != nil {
						testCtx.Cancel()
					}
				}
			}()

			res, err := RunSmokeTest(ctx, RunSmokeTestOptions{
				FromEndpoint: opts.Endpoint,
				ToEndpoint:   req.Endpoint,
				UserAgent:    opts.UserAgent,
				Timeout:      req.Timeout,
				Rect:         req.Rect,
			})
			if err != nil {
				logs.Warn(err)
			}

			if err := opts.SendResult(ctx, res); err != nil {
				logs.WithTag("from_endpoint", opts.Endpoint).
					WithTag("to_endpoint", req.Endpoint).
					Warn(errors.New("sending smoke test result failed").Wrap(err))
			}

		}()

		w.WriteHeader(http.StatusOK)
	}
}

type RunSmokeTestOptions struct {
	FromEndpoint string
	ToEndpoint   string
	UserAgent    string
	Timeout      time.Duration

	// The viewport requested. The whole world when nil.
	Rect *swebsocket.RectMsg
}

// RunSmokeTest connects to the viewport stream of the targeted endpoint,
// requests a viewport and measures the time until its spots arrive.
func RunSmokeTest(ctx context.Context, opts RunSmokeTestOptions) (SmokeTestResults, error) {
	res := SmokeTestResults{
		FromEndpoint: opts.FromEndpoint,
		ToEndpoint:   opts.ToEndpoint,
		Status:       StatusFailed,
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Rect == nil {
		opts.Rect = &swebsocket.RectMsg{X: -180, Y: -90, W: 360, H: 180}
	}

	config, err := websocket.NewConfig(viewportURL(opts.ToEndpoint), opts.FromEndpoint)
	if err != nil {
		return res, errors.New("creating smoke test config failed").
			WithTag("to_endpoint", opts.ToEndpoint).
			Wrap(err)
	}
	config.Dialer = &net.Dialer{Timeout: opts.Timeout}
	if opts.UserAgent != "" {
		config.Header.Set("User-Agent", opts.UserAgent)
	}

	start := time.Now()

	conn, err := websocket.DialConfig(config)
	if err != nil {
		return res, errors.New("dialing smoke test endpoint failed").
			WithTag("to_endpoint", opts.ToEndpoint).
			Wrap(err)
	}
	defer conn.Close()

	deadline := start.Add(opts.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	req, err := json.Marshal(swebsocket.Msg{
		Type:      swebsocket.MsgTypeViewport,
		RequestID: smokeTestRequestID,
		Rect:      opts.Rect,
	})
	if err != nil {
		return res, errors.New("encoding viewport request failed").Wrap(err)
	}
	if err := websocket.Message.Send(conn, string(req)); err != nil {
		return res, errors.New("sending viewport request failed").Wrap(err)
	}

	for {
		var b []byte
		if err := websocket.Message.Receive(conn, &b); err != nil {
			return res, errors.New("receiving viewport response failed").
				WithTag("to_endpoint", opts.ToEndpoint).
				Wrap(err)
		}

		var msg swebsocket.Msg
		if err := json.Unmarshal(b, &msg); err != nil {
			return res, errors.New("decoding viewport response failed").Wrap(err)
		}
		if msg.RequestID != smokeTestRequestID {
			continue
		}

		if msg.Type != swebsocket.MsgTypeSpots {
			return res, errors.New("unexpected viewport response").
				WithTag("type", msg.TypeString()).
				WithTag("error", msg.Error)
		}

		res.Status = StatusSuccess
		res.LatencyMilliSec = float64(time.Since(start).Microseconds()) / 1000
		res.Spots = len(msg.Spots)
		return res, nil
	}
}

func viewportURL(endpoint string) string {
	u := strings.TrimSuffix(endpoint, "/")
	u = strings.Replace(u, "https://", "wss://", 1)
	u = strings.Replace(u, "http://", "ws://", 1)
	return u + "/viewport"
}
