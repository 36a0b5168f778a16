package config

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellgate/cellgate/store"
)

func TestParse_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Parse(fs, nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.HTTPEnabled)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, store.Periodic, cfg.StoreKind)
	assert.Equal(t, 10_000, cfg.QueueCapacity)
}

func TestParse_FlagOverrides(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Parse(fs, []string{"-store", "adaptive", "-http-addr", ":9090", "-queue-capacity", "5"})
	require.NoError(t, err)

	assert.Equal(t, store.Adaptive, cfg.StoreKind)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 5, cfg.QueueCapacity)
}

func TestParse_UnknownStoreKind(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	_, err := Parse(fs, []string{"-store", "bogus"})
	require.Error(t, err)
}

func TestParse_EnvFallback(t *testing.T) {
	t.Setenv("CELLGATE_HTTP_ADDR", ":7070")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Parse(fs, nil)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
}

func TestConfig_StoreConfig(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Parse(fs, []string{"-store", "periodic", "-periodic-interval-seconds", "30"})
	require.NoError(t, err)

	sc := cfg.StoreConfig()
	assert.Equal(t, store.Periodic, sc.Kind)
	assert.Equal(t, int64(30_000_000_000), sc.PeriodicIntervalNano)
}
