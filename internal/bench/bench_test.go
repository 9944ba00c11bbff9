package bench

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/deriv/meta"
)

const (
	number  = `^(0|[1-9][0-9]*)(\.[0-9]*)?$`
	anum    = "31415926535897932384626.4338327950288419716939937"
	notANum = "31415926535897932384626.4338327.95028841971693993"
)

func numberOptions(iterations int) Options {
	return Options{
		Pattern:    number,
		Inputs:     []string{anum, notANum},
		Iterations: iterations,
		Engines:    []string{EngineDerivative, EngineStep, EngineStdlib},
		Engine:     meta.DefaultConfig(),
	}
}

func TestRunNumber(t *testing.T) {
	report, err := Run(context.Background(), numberOptions(20))
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	assert.True(t, report.Agree())
	assert.Equal(t, number, report.Pattern)
	assert.Positive(t, report.Terms)
	assert.Positive(t, report.Stats.Matches)

	wantBytes := int64(20 * (len(anum) + len(notANum)))
	for i, name := range []string{EngineDerivative, EngineStep, EngineStdlib} {
		res := report.Results[i]
		assert.Equal(t, name, res.Engine)
		assert.Equal(t, 20, res.Iterations)
		assert.Equal(t, wantBytes, res.Bytes)
		assert.Equal(t, []bool{true, false}, res.Matches, name)
	}
}

func TestRunDisagreement(t *testing.T) {
	// \s includes \v here but not in the standard library.
	report, err := Run(context.Background(), Options{
		Pattern:    `\s`,
		Inputs:     []string{"\v", " "},
		Iterations: 1,
		Engines:    []string{EngineDerivative, EngineStdlib},
		Engine:     meta.DefaultConfig(),
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, report.Results[0].Matches)
	assert.Equal(t, []bool{false, true}, report.Results[1].Matches)
	assert.False(t, report.Agree())
}

func TestRunErrors(t *testing.T) {
	opts := numberOptions(1)
	opts.Engines = []string{EngineDerivative, "pcre"}
	_, err := Run(context.Background(), opts)
	assert.ErrorIs(t, err, ErrUnknownEngine)

	opts = numberOptions(1)
	opts.Pattern = "(a"
	_, err = Run(context.Background(), opts)
	assert.Error(t, err)

	opts = numberOptions(1)
	opts.Engine.CacheSize = -1
	_, err = Run(context.Background(), opts)
	var cfgErr *meta.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, numberOptions(10))
	assert.ErrorIs(t, err, context.Canceled)
}

// The n-th-from-last pattern needs a new term for almost every byte, so a
// cap just above the compiled size must stop the run.
func TestRunTermLimit(t *testing.T) {
	const pattern = `(a|b)*a(a|b){12}`

	config := meta.DefaultConfig()
	config.CheckInterval = 16
	compiled, err := meta.Compile(pattern, config)
	require.NoError(t, err)
	config.MaxTerms = compiled.NumTerms() + 4

	opts := Options{
		Pattern:    pattern,
		Inputs:     []string{strings.Repeat("ab", 2048)},
		Iterations: 10,
		Engines:    []string{EngineStep, EngineDerivative},
		Engine:     config,
	}
	report, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, meta.ErrTermLimitExceeded)
	assert.Contains(t, err.Error(), EngineDerivative)

	opts.Engine.MaxTerms = 0
	report, err = Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, report.Agree())
}

func TestResultNsPerByte(t *testing.T) {
	assert.Zero(t, Result{}.NsPerByte())
	assert.InDelta(t, 2.5, Result{Bytes: 4, Elapsed: 10}.NsPerByte(), 1e-9)
}

func TestReportPrint(t *testing.T) {
	report, err := Run(context.Background(), numberOptions(2))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.Print(&buf))
	out := buf.String()
	assert.Contains(t, out, "pattern")
	assert.Contains(t, out, number)
	assert.Contains(t, out, report.Strategy.String())
	assert.Contains(t, out, "ns/byte")
	assert.Contains(t, out, "true false")
	for _, name := range []string{EngineDerivative, EngineStep, EngineStdlib} {
		assert.Contains(t, out, name)
	}
}

func TestRunLogsPerEngine(t *testing.T) {
	var buf bytes.Buffer
	opts := numberOptions(1)
	opts.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "engine=derivative")
	assert.Contains(t, out, "engine=step")
	assert.Contains(t, out, "engine=stdlib")
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	opts := numberOptions(3)
	opts.Metrics = m

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	wantBytes := float64(3 * (len(anum) + len(notANum)))
	for _, name := range opts.Engines {
		assert.Equal(t, float64(1), testutil.ToFloat64(m.runsTotal.WithLabelValues(name)), name)
		assert.Equal(t, wantBytes, testutil.ToFloat64(m.bytesTotal.WithLabelValues(name)), name)
	}
	assert.Equal(t, float64(report.Terms), testutil.ToFloat64(m.terms))
	assert.Equal(t, float64(report.Stats.CacheHits), testutil.ToFloat64(m.cacheHits))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `deriv_bench_bytes_total{engine="step"}`)
	assert.Contains(t, string(body), "deriv_bench_terms")
	assert.Contains(t, string(body), "go_goroutines")
}
