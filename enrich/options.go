// Package enrich computes per-sample gene-set enrichment scores from a
// gene × sample expression matrix and a gene-set collection. Four scoring
// methods are supported: the kernel-CDF random-walk method (gsva), its
// single-sample variant (ssgsea), the standardized-sum method (zscore) and
// the singular-value-decomposition method (plage).
package enrich

import (
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/gsva/core/parallel"
	"github.com/YuminosukeSato/gsva/kcdf"
	"github.com/YuminosukeSato/gsva/pkg/errors"
	"github.com/YuminosukeSato/gsva/pkg/log"
)

// Method identifies one of the four scoring methods. The set is closed:
// each method has distinct parameterization and the calculator dispatches on
// the variant directly.
type Method int

const (
	// MethodGSVA is the kernel-CDF random-walk method.
	MethodGSVA Method = iota
	// MethodSSGSEA is the single-sample random-walk variant.
	MethodSSGSEA
	// MethodZScore is the standardized-sum method.
	MethodZScore
	// MethodPLAGE is the singular-value-decomposition method.
	MethodPLAGE
)

// String returns the configuration name of the method.
func (m Method) String() string {
	switch m {
	case MethodGSVA:
		return "gsva"
	case MethodSSGSEA:
		return "ssgsea"
	case MethodZScore:
		return "zscore"
	case MethodPLAGE:
		return "plage"
	default:
		return "unknown"
	}
}

// ParseMethod resolves a configuration string to a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "gsva", "":
		return MethodGSVA, nil
	case "ssgsea":
		return MethodSSGSEA, nil
	case "zscore":
		return MethodZScore, nil
	case "plage":
		return MethodPLAGE, nil
	default:
		return MethodGSVA, errors.NewValidationError("method", "unknown scoring method", s)
	}
}

// Options collects every knob of the scoring engine. Zero values are filled
// by defaults; construct through Scores' variadic options or Config.
type Options struct {
	Method     Method
	Kernel     kcdf.Kernel
	Tau        float64 // 0 selects the method default (1, or 0.25 for ssgsea)
	MaxDiff    bool
	AbsRanking bool
	MinSize    int
	MaxSize    int
	SSGSEANorm bool
	Executor   parallel.Executor
	ChunkSize  int
	Logger     zerolog.Logger
}

func defaultOptions() Options {
	return Options{
		Method:     MethodGSVA,
		Kernel:     kcdf.Gaussian,
		Tau:        0,
		MaxDiff:    true,
		AbsRanking: false,
		MinSize:    1,
		MaxSize:    math.MaxInt,
		SSGSEANorm: true,
		Executor:   parallel.Sequential{},
		ChunkSize:  0,
		Logger:     log.Nop(),
	}
}

// effectiveTau resolves the walk exponent, falling back to the method default.
func (o *Options) effectiveTau() float64 {
	if o.Tau > 0 {
		return o.Tau
	}
	if o.Method == MethodSSGSEA {
		return 0.25
	}
	return 1
}

func (o *Options) validate() error {
	if o.Executor == nil {
		return errors.Wrap(errors.ErrNilExecutor, "enrich: no execution strategy configured")
	}
	if o.Tau < 0 {
		return errors.NewValidationError("tau", "must be positive", o.Tau)
	}
	if o.MinSize < 1 {
		return errors.NewValidationError("min.sz", "must be a positive integer", o.MinSize)
	}
	if o.MaxSize < o.MinSize {
		return errors.NewValidationError("max.sz", "must be >= min.sz", o.MaxSize)
	}
	return nil
}

// Option configures the scoring engine.
type Option func(*Options)

// WithMethod selects the scoring method.
func WithMethod(m Method) Option {
	return func(o *Options) { o.Method = m }
}

// WithKernel selects the CDF estimation kernel (gsva method only).
func WithKernel(k kcdf.Kernel) Option {
	return func(o *Options) { o.Kernel = k }
}

// WithTau sets the rank-weight exponent of the random walk.
func WithTau(tau float64) Option {
	return func(o *Options) { o.Tau = tau }
}

// WithMaxDiff selects between the magnitude-of-difference statistic (true,
// the default) and the classic single-sided KS-type statistic (false).
func WithMaxDiff(maxDiff bool) Option {
	return func(o *Options) { o.MaxDiff = maxDiff }
}

// WithAbsRanking treats both walk deviations as evidence of activation when
// combined with MaxDiff.
func WithAbsRanking(abs bool) Option {
	return func(o *Options) { o.AbsRanking = abs }
}

// WithSizeBounds sets the inclusive [min, max] window on mapped gene-set
// cardinality.
func WithSizeBounds(minSize, maxSize int) Option {
	return func(o *Options) {
		o.MinSize = minSize
		o.MaxSize = maxSize
	}
}

// WithSSGSEANorm toggles the global-range normalization of raw ssgsea scores.
func WithSSGSEANorm(norm bool) Option {
	return func(o *Options) { o.SSGSEANorm = norm }
}

// WithExecutor injects the parallel execution strategy. The engine never
// falls back to sequential execution on its own; pass parallel.Sequential
// explicitly to request it.
func WithExecutor(e parallel.Executor) Option {
	return func(o *Options) { o.Executor = e }
}

// WithChunkSize sets how many samples (or gene sets, for plage) form one unit
// of scheduled work. <= 0 derives a chunk size from the CPU count.
func WithChunkSize(n int) Option {
	return func(o *Options) { o.ChunkSize = n }
}

// WithLogger attaches a zerolog logger for progress and diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}
