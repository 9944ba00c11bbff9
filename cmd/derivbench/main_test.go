package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/deriv/internal/config"
)

func parseArgs(t *testing.T, args ...string) cli {
	t.Helper()
	var params cli
	parser, err := kong.New(&params)
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return params
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := parseArgs(t).load()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPattern, cfg.Bench.Pattern)
	assert.Equal(t, []string{config.ANum, config.NotANum}, cfg.Bench.Inputs)
}

func TestLoadFlagsOverride(t *testing.T) {
	t.Setenv("DERIVBENCH_BENCH_ITERATIONS", "50")

	params := parseArgs(t,
		"-p", "[a-z]+",
		"-i", "abc,def",
		"-i", "XYZ",
		"-n", "5",
		"-e", "derivative,step",
		"--no-prefilter",
		"--log-level", "warn",
	)
	cfg, err := params.load()
	require.NoError(t, err)

	assert.Equal(t, "[a-z]+", cfg.Bench.Pattern)
	assert.Equal(t, []string{"abc,def", "XYZ"}, cfg.Bench.Inputs)
	assert.Equal(t, 5, cfg.Bench.Iterations)
	assert.Equal(t, []string{"derivative", "step"}, cfg.Bench.Engines)
	assert.False(t, cfg.Engine.Prefilter)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadRejectsInvalidFlags(t *testing.T) {
	_, err := parseArgs(t, "-e", "derivative,java").load()
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRun(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out bytes.Buffer
	params := parseArgs(t, "-n", "3", "--log-level", "error")
	require.NoError(t, run(context.Background(), params, &out))

	report := out.String()
	assert.Contains(t, report, config.DefaultPattern)
	assert.Contains(t, report, "derivative")
	assert.Contains(t, report, "step")
	assert.Contains(t, report, "stdlib")
	assert.Contains(t, report, "true false")
}

func TestRunSyntaxError(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	err := run(context.Background(), parseArgs(t, "-p", "a(b", "-n", "1", "--log-level", "error"), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running benchmark")
}
