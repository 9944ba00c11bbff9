package meta

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/coregx/deriv/alphabet"
	"github.com/coregx/deriv/literal"
	"github.com/coregx/deriv/prefilter"
	"github.com/coregx/deriv/syntax"
	"github.com/coregx/deriv/term"
)

// ErrTermLimitExceeded is returned by IsMatchContext when the number of
// interned terms grows past Config.MaxTerms.
var ErrTermLimitExceeded = errors.New("regexp: term limit exceeded")

// Engine matches whole inputs against a compiled term.
//
// The Engine:
//  1. Extracts prefix, suffix and inner literals from the term
//  2. Selects a strategy (see Strategy)
//  3. Builds a prefilter when literals are available
//  4. Derives the term byte by byte, memoizing transitions per byte class
//
// Thread safety: an Engine is safe for concurrent use. The term table,
// transition cache and counters are all synchronized.
//
// Example:
//
//	engine, err := meta.Compile(`(foo|bar)[0-9]+`, meta.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	engine.IsMatch([]byte("foo123")) // true
type Engine struct {
	stats counters

	pattern  string
	builder  *term.Builder
	root     *term.Term
	classes  alphabet.ByteClasses
	strategy Strategy

	// prefilter is nil for UseDerivative and UseEmptySet. For UsePrefilter
	// it is the tracker, which retires itself when it stops rejecting.
	prefilter prefilter.Prefilter
	tracker   *prefilter.Tracker

	cache  *transitionCache
	config Config
}

// Stats tracks execution statistics for performance analysis.
type Stats struct {
	// Matches counts IsMatch, IsMatchString and IsMatchContext calls.
	Matches uint64

	// Derivatives counts derivatives computed by the builder.
	Derivatives uint64

	// CacheHits counts transitions served by the cache.
	CacheHits uint64

	// PrefilterRejects counts inputs rejected without deriving.
	PrefilterRejects uint64

	// DeadStates counts runs cut short by reaching the empty set.
	DeadStates uint64
}

// counters holds the live statistics. Each counter sits on its own cache
// line since every goroutine matching with the engine updates them.
type counters struct {
	matches          atomic.Uint64
	_                cpu.CacheLinePad
	derivatives      atomic.Uint64
	_                cpu.CacheLinePad
	cacheHits        atomic.Uint64
	_                cpu.CacheLinePad
	prefilterRejects atomic.Uint64
	_                cpu.CacheLinePad
	deadStates       atomic.Uint64
}

// Compile parses pattern and builds an engine for it.
func Compile(pattern string, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	b := term.NewBuilder()
	t, err := syntax.Parse(pattern, b)
	if err != nil {
		return nil, err
	}
	return newEngine(pattern, b, t, config)
}

// NewEngine builds an engine for a term made by b. Derivatives of t are
// interned in b as matching proceeds.
func NewEngine(b *term.Builder, t *term.Term, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newEngine(t.String(), b, t, config)
}

func newEngine(pattern string, b *term.Builder, t *term.Term, config Config) (*Engine, error) {
	cache, err := newTransitionCache(config.CacheSize)
	if err != nil {
		return nil, err
	}

	var pf prefilter.Prefilter
	if config.EnablePrefilter {
		ex := literal.New(literal.ExtractorConfig{
			MaxLiterals:   config.MaxLiterals,
			MaxLiteralLen: config.MaxLiteralLen,
			MaxClassSize:  config.MaxClassSize,
		})
		pf = prefilter.NewBuilder(ex.ExtractPrefixes(t), ex.ExtractSuffixes(t), ex.ExtractInner(t)).Build()
	}

	e := &Engine{
		pattern:  pattern,
		builder:  b,
		root:     t,
		classes:  term.ByteClasses(t),
		strategy: SelectStrategy(t, pf),
		cache:    cache,
		config:   config,
	}
	switch e.strategy {
	case UseExactLiteral:
		e.prefilter = pf
	case UsePrefilter:
		e.tracker = prefilter.NewTracker(pf)
		e.prefilter = e.tracker
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		pfName := "none"
		if e.prefilter != nil {
			pfName = e.prefilter.String()
		}
		logger.Debug("compiled pattern",
			"pattern", pattern,
			"strategy", e.strategy.String(),
			"prefilter", pfName,
			"byte_classes", e.classes.AlphabetLen(),
			"terms", b.Len(),
		)
	}
	return e, nil
}

// IsMatch reports whether the whole input matches.
func (e *Engine) IsMatch(input []byte) bool {
	e.stats.matches.Add(1)
	pass := e.usesPrefilter() && e.prefilter.MayMatch(input)
	if ok, done := e.decide(pass); done {
		return ok
	}

	var r run
	t := advance(e, e.root, input, &r)
	e.finish(&r, t)
	return t.Nullable()
}

// IsMatchString is IsMatch for a string. It does not copy s, except for
// the Aho-Corasick prefilter, which only scans byte slices.
func (e *Engine) IsMatchString(s string) bool {
	e.stats.matches.Add(1)
	pass := e.usesPrefilter() && e.prefilter.MayMatchString(s)
	if ok, done := e.decide(pass); done {
		return ok
	}

	var r run
	t := advance(e, e.root, s, &r)
	e.finish(&r, t)
	return t.Nullable()
}

// IsMatchContext is like IsMatch but checks ctx and Config.MaxTerms every
// Config.CheckInterval bytes. It returns ctx.Err() when the context is done
// and ErrTermLimitExceeded when the term table outgrows the cap.
func (e *Engine) IsMatchContext(ctx context.Context, input []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	e.stats.matches.Add(1)
	pass := e.usesPrefilter() && e.prefilter.MayMatch(input)
	if ok, done := e.decide(pass); done {
		return ok, nil
	}

	var r run
	t := e.root
	for start := 0; start < len(input); start += e.config.CheckInterval {
		if start > 0 {
			if err := ctx.Err(); err != nil {
				e.finish(&r, t)
				return false, err
			}
		}
		if e.config.MaxTerms > 0 && e.builder.Len() > e.config.MaxTerms {
			e.finish(&r, t)
			return false, ErrTermLimitExceeded
		}
		end := min(start+e.config.CheckInterval, len(input))
		t = advance(e, t, input[start:end], &r)
		if t.Kind() == term.KindEmptySet {
			break
		}
	}
	e.finish(&r, t)
	return t.Nullable(), nil
}

func (e *Engine) usesPrefilter() bool {
	return e.strategy == UseExactLiteral || e.strategy == UsePrefilter
}

// decide answers without deriving when the strategy allows it. pass is the
// prefilter's verdict on the input, meaningful only when usesPrefilter.
func (e *Engine) decide(pass bool) (ok, done bool) {
	switch e.strategy {
	case UseEmptySet:
		return false, true
	case UseExactLiteral:
		return pass, true
	case UsePrefilter:
		if !pass {
			e.stats.prefilterRejects.Add(1)
			return false, true
		}
	}
	return false, false
}

// run accumulates counters of a single match so the shared ones are updated
// once per call.
type run struct {
	derivatives uint64
	cacheHits   uint64
}

// advance derives t by every byte of input and stops at the empty set.
func advance[S ~[]byte | ~string](e *Engine, t *term.Term, input S, r *run) *term.Term {
	for i := 0; i < len(input); i++ {
		c := input[i]
		key := transition{from: t.ID(), class: e.classes.Get(c)}
		if next, ok := e.cache.get(key); ok {
			r.cacheHits++
			t = next
		} else {
			r.derivatives++
			next = e.builder.Derivative(t, c)
			e.cache.add(key, next)
			t = next
		}
		if t.Kind() == term.KindEmptySet {
			return t
		}
	}
	return t
}

func (e *Engine) finish(r *run, last *term.Term) {
	if r.derivatives > 0 {
		e.stats.derivatives.Add(r.derivatives)
	}
	if r.cacheHits > 0 {
		e.stats.cacheHits.Add(r.cacheHits)
	}
	if last.Kind() == term.KindEmptySet {
		e.stats.deadStates.Add(1)
	}
}

// Strategy returns the execution strategy selected for this engine.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Prefilter returns the prefilter in use, or nil.
func (e *Engine) Prefilter() prefilter.Prefilter {
	return e.prefilter
}

// Term returns the compiled term.
func (e *Engine) Term() *term.Term {
	return e.root
}

// String returns the source pattern, or the term for engines built with
// NewEngine.
func (e *Engine) String() string {
	return e.pattern
}

// NumTerms returns the number of terms interned by the engine's builder.
// It grows as matching discovers new derivatives.
func (e *Engine) NumTerms() int {
	return e.builder.Len()
}

// CachedTransitions returns the number of transitions in the cache.
func (e *Engine) CachedTransitions() int {
	return e.cache.len()
}

// Stats returns execution statistics.
//
// Example:
//
//	stats := engine.Stats()
//	println("derivatives:", stats.Derivatives)
//	println("cache hits:", stats.CacheHits)
func (e *Engine) Stats() Stats {
	return Stats{
		Matches:          e.stats.matches.Load(),
		Derivatives:      e.stats.derivatives.Load(),
		CacheHits:        e.stats.cacheHits.Load(),
		PrefilterRejects: e.stats.prefilterRejects.Load(),
		DeadStates:       e.stats.deadStates.Load(),
	}
}

// ResetStats resets execution statistics to zero and re-arms the prefilter
// tracker. The transition cache is kept.
func (e *Engine) ResetStats() {
	e.stats.matches.Store(0)
	e.stats.derivatives.Store(0)
	e.stats.cacheHits.Store(0)
	e.stats.prefilterRejects.Store(0)
	e.stats.deadStates.Store(0)
	if e.tracker != nil {
		e.tracker.Reset()
	}
}

// PurgeCache drops every cached transition.
func (e *Engine) PurgeCache() {
	e.cache.purge()
}
