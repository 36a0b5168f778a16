// Package config assembles the process-level Config from flags with
// environment variable fallbacks. Parsing lives here only; constructors in
// actor, store, and the transports take plain values.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/cellgate/cellgate/store"
)

// Config is the full set of knobs cmd/cellgated needs to assemble a Store,
// an Actor, and the enabled transports.
type Config struct {
	LogLevel  string
	LogFormat string

	HTTPEnabled bool
	HTTPAddr    string

	GRPCEnabled bool
	GRPCAddr    string

	RESPEnabled bool
	RESPAddr    string

	StoreKind                store.Kind
	StoreCapacityHint        int
	PeriodicIntervalSeconds  int64
	ProbabilisticDenominator int64
	ProbabilisticSeed        int64
	AdaptiveMinIntervalS     int64
	AdaptiveMaxIntervalS     int64
	AdaptiveInitialIntervalS int64
	AdaptiveMaxOps           int64
	AdaptiveHighWatermark    float64
	AdaptiveLowWatermark     float64

	QueueCapacity   int
	TopKeysCapacity int
	BlockingSubmit  bool
}

// Parse builds a Config from the given flag set and os.Args-style argument
// list, falling back to environment variables (CELLGATE_*) for anything not
// passed as a flag, and finally to defaults.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{}

	fs.StringVar(&cfg.LogLevel, "log-level", envOr("CELLGATE_LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", envOr("CELLGATE_LOG_FORMAT", "text"), "log format: text, json")

	fs.BoolVar(&cfg.HTTPEnabled, "http", envOrBool("CELLGATE_HTTP_ENABLED", true), "enable the HTTP/JSON transport")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", envOr("CELLGATE_HTTP_ADDR", ":8080"), "HTTP listen address")

	fs.BoolVar(&cfg.GRPCEnabled, "grpc", envOrBool("CELLGATE_GRPC_ENABLED", true), "enable the gRPC transport")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", envOr("CELLGATE_GRPC_ADDR", ":8081"), "gRPC listen address")

	fs.BoolVar(&cfg.RESPEnabled, "resp", envOrBool("CELLGATE_RESP_ENABLED", true), "enable the RESP transport")
	fs.StringVar(&cfg.RESPAddr, "resp-addr", envOr("CELLGATE_RESP_ADDR", ":6380"), "RESP listen address")

	storeKind := fs.String("store", envOr("CELLGATE_STORE_KIND", "periodic"), "store cleanup policy: periodic, probabilistic, adaptive")
	fs.IntVar(&cfg.StoreCapacityHint, "store-capacity-hint", int(envOrInt("CELLGATE_STORE_CAPACITY_HINT", 1024)), "initial map capacity hint")
	fs.Int64Var(&cfg.PeriodicIntervalSeconds, "periodic-interval-seconds", envOrInt("CELLGATE_PERIODIC_INTERVAL_SECONDS", 60), "periodic store cleanup interval, seconds")
	fs.Int64Var(&cfg.ProbabilisticDenominator, "probabilistic-denominator", envOrInt("CELLGATE_PROBABILISTIC_DENOMINATOR", store.DefaultProbabilisticDenominator), "1-in-N chance of a cleanup sweep per request")
	fs.Int64Var(&cfg.ProbabilisticSeed, "probabilistic-seed", envOrInt("CELLGATE_PROBABILISTIC_SEED", 1), "seed for the probabilistic store's PRNG")
	fs.Int64Var(&cfg.AdaptiveMinIntervalS, "adaptive-min-interval-seconds", envOrInt("CELLGATE_ADAPTIVE_MIN_INTERVAL_SECONDS", 1), "adaptive store minimum cleanup interval, seconds")
	fs.Int64Var(&cfg.AdaptiveMaxIntervalS, "adaptive-max-interval-seconds", envOrInt("CELLGATE_ADAPTIVE_MAX_INTERVAL_SECONDS", 300), "adaptive store maximum cleanup interval, seconds")
	fs.Int64Var(&cfg.AdaptiveInitialIntervalS, "adaptive-initial-interval-seconds", envOrInt("CELLGATE_ADAPTIVE_INITIAL_INTERVAL_SECONDS", 10), "adaptive store initial cleanup interval, seconds")
	fs.Int64Var(&cfg.AdaptiveMaxOps, "adaptive-max-ops", envOrInt("CELLGATE_ADAPTIVE_MAX_OPS", 100_000), "adaptive store op count that forces a sweep")
	fs.Float64Var(&cfg.AdaptiveHighWatermark, "adaptive-high-watermark", envOrFloat("CELLGATE_ADAPTIVE_HIGH_WATERMARK", 0.25), "removed-ratio above which the interval halves")
	fs.Float64Var(&cfg.AdaptiveLowWatermark, "adaptive-low-watermark", envOrFloat("CELLGATE_ADAPTIVE_LOW_WATERMARK", 0.01), "removed-ratio below which the interval doubles")

	fs.IntVar(&cfg.QueueCapacity, "queue-capacity", int(envOrInt("CELLGATE_QUEUE_CAPACITY", 10_000)), "Actor request queue capacity")
	fs.IntVar(&cfg.TopKeysCapacity, "top-keys-capacity", int(envOrInt("CELLGATE_TOP_KEYS_CAPACITY", 100)), "top-denied-keys tracker capacity, 0 disables")
	fs.BoolVar(&cfg.BlockingSubmit, "blocking-submit", envOrBool("CELLGATE_BLOCKING_SUBMIT", false), "block producers on a full queue instead of failing fast")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	kind, err := parseStoreKind(*storeKind)
	if err != nil {
		return Config{}, err
	}
	cfg.StoreKind = kind

	return cfg, nil
}

func parseStoreKind(s string) (store.Kind, error) {
	switch s {
	case "periodic":
		return store.Periodic, nil
	case "probabilistic":
		return store.Probabilistic, nil
	case "adaptive":
		return store.Adaptive, nil
	default:
		return 0, fmt.Errorf("config: unknown store kind %q", s)
	}
}

// StoreConfig builds the store.Config this Config describes.
func (c Config) StoreConfig() store.Config {
	return store.Config{
		Kind:                     c.StoreKind,
		CapacityHint:             c.StoreCapacityHint,
		PeriodicIntervalNano:     c.PeriodicIntervalSeconds * 1_000_000_000,
		ProbabilisticDenominator: c.ProbabilisticDenominator,
		ProbabilisticSeed:        c.ProbabilisticSeed,
		Adaptive: store.AdaptiveConfig{
			MinIntervalNano:     c.AdaptiveMinIntervalS * 1_000_000_000,
			MaxIntervalNano:     c.AdaptiveMaxIntervalS * 1_000_000_000,
			InitialIntervalNano: c.AdaptiveInitialIntervalS * 1_000_000_000,
			MaxOps:              c.AdaptiveMaxOps,
			HighWatermark:       c.AdaptiveHighWatermark,
			LowWatermark:        c.AdaptiveLowWatermark,
		},
	}
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envOrBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrInt(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
