// Package errors provides the error and warning system for the gsva library.
// Errors are structured types carrying the context a caller needs to react
// programmatically (offending gene set, matrix axis, parameter name), with
// stack traces attached via cockroachdb/errors and optional structured
// output through zerolog.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// Default handler logs to standard error.
		log.Printf("gsva-warning: %v\n", w)
	}
	// zerolog warn hook, installed lazily by pkg/log to avoid an import cycle.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler installs a custom handler for non-fatal diagnostics such
// as constant-row removal. Passing a no-op silences warnings entirely.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs the zerolog warning sink. Called by pkg/log;
// exported so alternative logging setups can hook in as well.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a non-fatal diagnostic. When a zerolog sink is installed it
// takes precedence over the plain handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Enrichment-specific fatal errors
//
// ===========================================================================

// NoMappableIdentifiersError is returned when, after mapping every gene set
// against the expression matrix row identifiers, the union of mapped genes is
// empty. This almost always indicates a nomenclature mismatch between the
// gene sets and the matrix (for example Entrez IDs against gene symbols).
type NoMappableIdentifiersError struct {
	GeneSets int // number of gene sets that were attempted
	Genes    int // number of row identifiers available for matching
}

func (e *NoMappableIdentifiersError) Error() string {
	return fmt.Sprintf("gsva: no gene set member maps to any of the %d expression rows (%d gene sets tried); "+
		"check that both inputs use the same gene identifier nomenclature", e.Genes, e.GeneSets)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NoMappableIdentifiersError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("gene_sets", e.GeneSets).
		Int("genes", e.Genes).
		Str("type", "NoMappableIdentifiersError")
}

// NewNoMappableIdentifiersError creates a NoMappableIdentifiersError with a stack trace.
func NewNoMappableIdentifiersError(geneSets, genes int) error {
	err := &NoMappableIdentifiersError{GeneSets: geneSets, Genes: genes}
	return errors.WithStack(err)
}

// EmptyGeneSetCollectionError is returned when no gene set survives mapping
// and the [min, max] size filter.
type EmptyGeneSetCollectionError struct {
	Input   int // gene sets supplied
	MinSize int
	MaxSize int
}

func (e *EmptyGeneSetCollectionError) Error() string {
	return fmt.Sprintf("gsva: none of the %d gene sets passed the size filter [%d, %d]", e.Input, e.MinSize, e.MaxSize)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *EmptyGeneSetCollectionError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("input_gene_sets", e.Input).
		Int("min_size", e.MinSize).
		Int("max_size", e.MaxSize).
		Str("type", "EmptyGeneSetCollectionError")
}

// NewEmptyGeneSetCollectionError creates an EmptyGeneSetCollectionError with a stack trace.
func NewEmptyGeneSetCollectionError(input, minSize, maxSize int) error {
	err := &EmptyGeneSetCollectionError{Input: input, MinSize: minSize, MaxSize: maxSize}
	return errors.WithStack(err)
}

// GeneSetTooSmallError is returned by scoring methods that place a hard lower
// bound on mapped gene-set size (the SVD method needs at least two genes).
// The mapper's size window should prevent this; the calculators still check.
type GeneSetTooSmallError struct {
	Set    string
	Size   int
	Min    int
	Method string
}

func (e *GeneSetTooSmallError) Error() string {
	return fmt.Sprintf("gsva: gene set %q has %d mapped genes but method %q requires at least %d", e.Set, e.Size, e.Method, e.Min)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *GeneSetTooSmallError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("gene_set", e.Set).
		Int("size", e.Size).
		Int("min", e.Min).
		Str("method", e.Method).
		Str("type", "GeneSetTooSmallError")
}

// NewGeneSetTooSmallError creates a GeneSetTooSmallError with a stack trace.
func NewGeneSetTooSmallError(set string, size, min int, method string) error {
	err := &GeneSetTooSmallError{Set: set, Size: size, Min: min, Method: method}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Warnings (non-fatal diagnostics)
//
// ===========================================================================

// ConstantRowsWarning reports expression rows whose standard deviation is
// zero or undefined. Such rows are removed before scoring except for methods
// that tolerate them.
type ConstantRowsWarning struct {
	Count   int
	Genes   []string // capped preview of offending row identifiers
	Dropped bool     // false when the active method keeps the rows
}

func (w *ConstantRowsWarning) Error() string {
	action := "removed before scoring"
	if !w.Dropped {
		action = "retained (method tolerates them)"
	}
	return fmt.Sprintf("%d expression rows have zero or undefined standard deviation; %s", w.Count, action)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *ConstantRowsWarning) MarshalZerologObject(event *zerolog.Event) {
	event.Int("count", w.Count).
		Strs("genes", w.Genes).
		Bool("dropped", w.Dropped).
		Str("type", "ConstantRowsWarning")
}

// NewConstantRowsWarning creates a ConstantRowsWarning. The gene preview is
// capped at ten identifiers to keep log lines bounded.
func NewConstantRowsWarning(genes []string, dropped bool) *ConstantRowsWarning {
	preview := genes
	if len(preview) > 10 {
		preview = preview[:10]
	}
	return &ConstantRowsWarning{Count: len(genes), Genes: preview, Dropped: dropped}
}

// UnmappedGeneSetWarning reports a gene set none of whose members matched any
// expression row. The set is dropped from the collection.
type UnmappedGeneSetWarning struct {
	Set     string
	Members int
}

func (w *UnmappedGeneSetWarning) Error() string {
	return fmt.Sprintf("gene set %q: none of its %d members map to an expression row; set dropped", w.Set, w.Members)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *UnmappedGeneSetWarning) MarshalZerologObject(event *zerolog.Event) {
	event.Str("gene_set", w.Set).
		Int("members", w.Members).
		Str("type", "UnmappedGeneSetWarning")
}

// NewUnmappedGeneSetWarning creates an UnmappedGeneSetWarning.
func NewUnmappedGeneSetWarning(set string, members int) *UnmappedGeneSetWarning {
	return &UnmappedGeneSetWarning{Set: set, Members: members}
}

// ===========================================================================
//
//	Generic structured errors
//
// ===========================================================================

// DimensionError reports an input whose shape disagrees with expectations.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows (genes), 1 for columns (samples)
}

func (e *DimensionError) Error() string {
	axisName := "samples"
	if e.Axis == 0 {
		axisName = "genes"
	}
	return fmt.Sprintf("gsva: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "samples"
	if e.Axis == 0 {
		axisName = "genes"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError reports a parameter whose value failed validation.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("gsva: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is unusable for an operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("gsva: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As reports whether err can be assigned to target's type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to err.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an empty matrix or collection is supplied.
	ErrEmptyData = New("empty data")

	// ErrNilExecutor is returned when scoring is requested without an executor.
	ErrNilExecutor = New("nil executor")
)
