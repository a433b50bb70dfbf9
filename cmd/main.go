package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"net/url"
	"os"
	"reflect"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/events"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/aukilabs/spotmap/featureflag"
	spotmaphttp "github.com/aukilabs/spotmap/http"
	"github.com/aukilabs/spotmap/models"
	"github.com/aukilabs/spotmap/quadtree"
	"github.com/aukilabs/spotmap/records"
	"github.com/aukilabs/spotmap/smoketest"
	swebsocket "github.com/aukilabs/spotmap/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

var (
	// The spotmap version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "spotmap_info",
		Help:        "Spotmap information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Addr               string        `cli:""        env:"SPOTMAP_ADDR"                 help:"Listening address for client connections."`
	AdminAddr          string        `cli:""        env:"SPOTMAP_ADMIN_ADDR"           help:"Admin listening address."`
	PublicEndpoint     string        `cli:""        env:"SPOTMAP_PUBLIC_ENDPOINT"      help:"The public endpoint where this server is reachable."`
	DataFile           string        `cli:""        env:"SPOTMAP_DATA_FILE"            help:"CSV file of spots indexed at startup."`
	Capacity           int           `cli:""        env:"SPOTMAP_CAPACITY"             help:"Maximum number of spots held by a quadrant before it splits."`
	Universe           string        `cli:""        env:"SPOTMAP_UNIVERSE"             help:"Indexed area as x,y,width,height (longitude,latitude,degrees,degrees)."`
	LogLevel           string        `cli:""        env:"SPOTMAP_LOG_LEVEL"            help:"Log level (debug|info|warning|error)."`
	LogIndent          bool          `cli:""        env:"SPOTMAP_LOG_INDENT"           help:"Indent logs."`
	ClientIdleTimeout  time.Duration `cli:",hidden" env:"SPOTMAP_CLIENT_IDLE_TIMEOUT"  help:"Time until an idle viewport stream client will be disconnected."`
	LogSummaryInterval time.Duration `cli:",hidden" env:"SPOTMAP_LOG_SUMMARY_INTERVAL" help:"The duration between each log summary by connection."`
	Events             eventsConfig  `cli:",hidden" env:"-"                            help:"Event pusher configuration."`
	FeatureFlags       []string      `cli:",hidden" env:"SPOTMAP_FEATURE_FLAGS"        help:"Comma separated feature flags"`
	Version            bool          `cli:""        env:"-"                            help:"Show version."`
	Help               bool          `cli:""        env:"-"                            help:"Show help."`
}

type eventsConfig struct {
	Endpoint      string        `cli:",hidden" env:"SPOTMAP_EVENTS_ENDPOINT"       help:"Endpoint to where events are pushed."`
	FlushInterval time.Duration `cli:",hidden" env:"SPOTMAP_EVENTS_FLUSH_INTERVAL" help:"The duration between each event flush."`
	BatchSize     int           `cli:",hidden" env:"SPOTMAP_EVENTS_BATCH_SIZE"     help:"The maximum number of events sent at once."`
	QueueSize     int           `cli:",hidden" env:"SPOTMAP_EVENTS_QUEUE_SIZE"     help:"The size of the queue where events are stored."`
}

func main() {
	conf := config{
		Addr:               ":4000",
		AdminAddr:          ":18190",
		PublicEndpoint:     "http://localhost:4000",
		Capacity:           3,
		Universe:           "-180,-90,360,180",
		LogLevel:           logs.InfoLevel.String(),
		ClientIdleTimeout:  time.Minute * 5,
		LogSummaryInterval: time.Minute,
		Events: eventsConfig{
			FlushInterval: events.DefaultFlushInterval,
			BatchSize:     events.DefaultBatchSize,
			QueueSize:     events.DefaultQueueSize,
		},
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts the spotmap server.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	universe, err := validateConfig(conf)
	if err != nil {
		logs.Fatal(err)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if conf.Events.Endpoint != "" {
		eventsPusher := events.Pusher{
			Endpoint:      conf.Events.Endpoint,
			FlushInterval: conf.Events.FlushInterval,
			BatchSize:     conf.Events.BatchSize,
			QueueSize:     conf.Events.QueueSize,
			Transport:     metrics.HTTPTransport(http.DefaultTransport),
		}
		go eventsPusher.Start()
		defer eventsPusher.Close()

		eventsLogger := events.Logger{
			Pusher:           &eventsPusher,
			SDKType:          "spotmap",
			SDKVersionFamily: version,
		}
		logs.SetLogger(eventsLogger.Log)
	}

	store, err := models.NewSpotStore(universe, conf.Capacity)
	if err != nil {
		logs.Fatal(errors.New("creating spot store failed").Wrap(err))
	}

	var ready atomic.Bool
	go func() {
		if conf.DataFile != "" {
			if err := loadSpots(store, conf.DataFile); err != nil {
				logs.Fatal(err)
			}
		}
		ready.Store(true)
	}()
	readinessCheck := ready.Load

	flags := featureflag.New(conf.FeatureFlags)

	var service http.ServeMux
	service.Handle("/health", spotmaphttp.HandleWithCORS(http.HandlerFunc(spotmaphttp.HandleHealthCheck)))
	service.Handle("/version", spotmaphttp.HandleWithCORS(http.HandlerFunc(spotmaphttp.HandleVersion(version))))
	service.Handle("/ready", spotmaphttp.HandleWithCORS(http.HandlerFunc(spotmaphttp.HandleReadyCheck(readinessCheck))))
	service.Handle("/spots", spotmaphttp.HandleWithCORS(spotmaphttp.HandleSpots(store, flags)))
	service.Handle("/spots.geojson", spotmaphttp.HandleWithCORS(spotmaphttp.HandleSpotsGeoJSON(store)))
	service.Handle("/stats", spotmaphttp.HandleWithCORS(spotmaphttp.HandleStats(store)))

	flags.IfNotSet(featureflag.FlagDisableViewportStream, func() {
		service.Handle("/viewport", websocket.Server{
			Handshake: func(c *websocket.Config, r *http.Request) error {
				return nil
			},
			Handler: func(conn *websocket.Conn) {
				defer conn.Close()

				var h swebsocket.Handler = &swebsocket.RealtimeHandler{
					Store:             store,
					ClientIdleTimeout: conf.ClientIdleTimeout,
				}
				h = swebsocket.HandlerWithLogs(h, conf.LogSummaryInterval)
				h = swebsocket.HandlerWithMetrics(h, conf.PublicEndpoint)
				defer h.Close()

				swebsocket.Handle(ctx, conn, h)
			},
		})
	})

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", spotmaphttp.HandleHealthCheck)
	admin.HandleFunc("/stats", spotmaphttp.HandleStats(store))
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	admin.Handle("/debug/pprof/threadcreate", pprof.Handler("threadcreate"))
	admin.Handle("/debug/pprof/block", pprof.Handler("block"))
	admin.Handle("/smoke-test", smoketest.HandleSmokeTest(ctx, smoketest.Options{
		Endpoint:  conf.PublicEndpoint,
		UserAgent: "spotmap/" + version,
		SendResult: func(ctx context.Context, res smoketest.SmokeTestResults) error {
			logs.WithTag("from_endpoint", res.FromEndpoint).
				WithTag("to_endpoint", res.ToEndpoint).
				WithTag("status", res.Status).
				WithTag("latency_ms", res.LatencyMilliSec).
				WithTag("spots", res.Spots).
				Info("smoke test done")
			return nil
		},
	}))
	admin.HandleFunc("/ready", spotmaphttp.HandleReadyCheck(readinessCheck))

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("endpoint", conf.PublicEndpoint).
		WithTag("store_uuid", store.UUID).
		WithTag("capacity", conf.Capacity).
		WithTag("universe", universe.String()).
		Info("starting spotmap server")

	spotmaphttp.ListenAndServe(ctx,
		&http.Server{Addr: conf.Addr, Handler: metrics.HTTPHandler(&service,
			spotmaphttp.MetricsPathFormatter)},
		&http.Server{Addr: conf.AdminAddr, Handler: &admin},
	)
}

func loadSpots(store *models.SpotStore, path string) error {
	start := time.Now()

	recs, errs, err := records.LoadFile(path)
	if err != nil {
		return errors.New("loading spots failed").Wrap(err)
	}

	for _, err := range errs {
		logs.WithTag("path", path).Warn(err)
	}

	spots := make([]models.Spot, len(recs))
	for i, r := range recs {
		spots[i] = models.NewSpotFromRecord(r)
	}
	accepted := store.AddAll(spots)

	logs.WithTag("path", path).
		WithTag("records", len(recs)).
		WithTag("malformed", len(errs)).
		WithTag("accepted", accepted).
		WithTag("rejected", len(spots)-accepted).
		WithTag("duration", time.Since(start)).
		Info("spots loaded")
	return nil
}

func validateConfig(conf config) (quadtree.Rect, error) {
	if _, err := url.ParseRequestURI(conf.PublicEndpoint); err != nil {
		return quadtree.Rect{}, errors.New("invalid public endpoint").Wrap(err)
	}

	if conf.Capacity <= 0 {
		return quadtree.Rect{}, errors.New("capacity must be greater than zero").
			WithTag("capacity", conf.Capacity)
	}

	universe, err := models.ParseRect(conf.Universe)
	if err != nil {
		return quadtree.Rect{}, errors.New("invalid universe").Wrap(err)
	}
	if universe.IsEmpty() {
		return quadtree.Rect{}, errors.New("universe must have a positive area").
			WithTag("universe", conf.Universe)
	}

	return universe, nil
}
