// Package bench times whole-input matching of one pattern against a fixed
// set of inputs with each available engine and reports throughput,
// allocation and term growth.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/coregx/deriv/meta"
	"github.com/coregx/deriv/step"
	"github.com/coregx/deriv/syntax"
	"github.com/coregx/deriv/term"
)

// Engine names accepted in Options.Engines.
const (
	EngineDerivative = "derivative"
	EngineStep       = "step"
	EngineStdlib     = "stdlib"
)

// ErrUnknownEngine is returned by Run for an engine name it does not know.
var ErrUnknownEngine = errors.New("bench: unknown engine")

// checkEvery is the number of iterations between context checks.
const checkEvery = 1024

// Options configures a benchmark run.
type Options struct {
	Pattern    string
	Inputs     []string
	Iterations int
	Engines    []string

	// Engine configures the derivative engine.
	Engine meta.Config

	// Logger receives one debug record per engine. Nil discards.
	Logger *slog.Logger

	// Metrics, when non-nil, records every result.
	Metrics *Metrics
}

// Result is the outcome of timing one engine.
type Result struct {
	Engine     string
	Iterations int
	Bytes      int64
	Elapsed    time.Duration

	// AllocBytes is the number of heap bytes allocated while timing, taken
	// from runtime.MemStats.TotalAlloc.
	AllocBytes uint64

	// Matches holds the answer for each input.
	Matches []bool
}

// NsPerByte returns the average matching cost per input byte.
func (r Result) NsPerByte() float64 {
	if r.Bytes == 0 {
		return 0
	}
	return float64(r.Elapsed.Nanoseconds()) / float64(r.Bytes)
}

// Report collects the results of a run.
type Report struct {
	Pattern  string
	Strategy meta.Strategy

	// Terms is the number of terms the derivative engine interned by the
	// end of the run.
	Terms int

	// Stats are the derivative engine's counters.
	Stats meta.Stats

	Results []Result
}

// Agree reports whether every engine gave the same answer for every input.
func (r *Report) Agree() bool {
	if len(r.Results) == 0 {
		return true
	}
	for _, res := range r.Results[1:] {
		if !slices.Equal(res.Matches, r.Results[0].Matches) {
			return false
		}
	}
	return true
}

// Print writes a human readable table of the report to w.
func (r *Report) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "pattern\t%s\n", r.Pattern)
	fmt.Fprintf(tw, "strategy\t%s\n", r.Strategy)
	fmt.Fprintf(tw, "terms\t%d\n", r.Terms)
	fmt.Fprintf(tw, "cache hits\t%d/%d\n", r.Stats.CacheHits, r.Stats.CacheHits+r.Stats.Derivatives)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "engine\titerations\tbytes\telapsed\tns/byte\talloc\tmatches")
	for _, res := range r.Results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%.2f\t%d\t%s\n",
			res.Engine, res.Iterations, res.Bytes, res.Elapsed.Round(time.Microsecond),
			res.NsPerByte(), res.AllocBytes, formatMatches(res.Matches))
	}
	return tw.Flush()
}

func formatMatches(m []bool) string {
	parts := make([]string, len(m))
	for i, ok := range m {
		parts[i] = fmt.Sprint(ok)
	}
	return strings.Join(parts, " ")
}

// matchFunc answers one whole-input match. Only the derivative engine can
// fail, with a context error or meta.ErrTermLimitExceeded.
type matchFunc func(ctx context.Context, b []byte) (bool, error)

// Run compiles the pattern for every requested engine and times
// opts.Iterations rounds over all inputs. It stops early with ctx.Err()
// when ctx is done, and with meta.ErrTermLimitExceeded when the derivative
// engine outgrows opts.Engine.MaxTerms.
func Run(ctx context.Context, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	engine, err := meta.Compile(opts.Pattern, opts.Engine)
	if err != nil {
		return nil, err
	}

	inputs := make([][]byte, len(opts.Inputs))
	var roundBytes int64
	for i, s := range opts.Inputs {
		inputs[i] = []byte(s)
		roundBytes += int64(len(s))
	}

	report := &Report{
		Pattern:  opts.Pattern,
		Strategy: engine.Strategy(),
	}

	for _, name := range opts.Engines {
		match, err := matcherFor(name, opts.Pattern, engine)
		if err != nil {
			return nil, err
		}

		res, err := timeEngine(ctx, name, match, inputs, opts.Iterations)
		if err != nil {
			return nil, err
		}
		res.Bytes = roundBytes * int64(opts.Iterations)
		report.Results = append(report.Results, res)

		logger.Debug("engine finished",
			"engine", name,
			"elapsed", res.Elapsed,
			"ns_per_byte", res.NsPerByte(),
			"alloc_bytes", res.AllocBytes)
		if opts.Metrics != nil {
			opts.Metrics.observe(res)
		}
	}

	report.Terms = engine.NumTerms()
	report.Stats = engine.Stats()
	if opts.Metrics != nil {
		opts.Metrics.observeEngine(report)
	}
	return report, nil
}

func matcherFor(name, pattern string, engine *meta.Engine) (matchFunc, error) {
	switch name {
	case EngineDerivative:
		return engine.IsMatchContext, nil
	case EngineStep:
		t, err := syntax.Parse(pattern, term.NewBuilder())
		if err != nil {
			return nil, err
		}
		m := step.Compile(t)
		return func(_ context.Context, b []byte) (bool, error) { return step.Match(m, b), nil }, nil
	case EngineStdlib:
		re, err := regexp.Compile(`^(?:` + pattern + `)$`)
		if err != nil {
			return nil, fmt.Errorf("bench: stdlib regexp: %w", err)
		}
		return func(_ context.Context, b []byte) (bool, error) { return re.Match(b), nil }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

func timeEngine(ctx context.Context, name string, match matchFunc, inputs [][]byte, iterations int) (Result, error) {
	res := Result{
		Engine:     name,
		Iterations: iterations,
		Matches:    make([]bool, len(inputs)),
	}
	for i, in := range inputs {
		ok, err := match(ctx, in)
		if err != nil {
			return Result{}, fmt.Errorf("bench: %s engine: %w", name, err)
		}
		res.Matches[i] = ok
	}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		for _, in := range inputs {
			if _, err := match(ctx, in); err != nil {
				return Result{}, fmt.Errorf("bench: %s engine: %w", name, err)
			}
		}
	}
	res.Elapsed = time.Since(start)
	runtime.ReadMemStats(&after)
	res.AllocBytes = after.TotalAlloc - before.TotalAlloc
	return res, nil
}
