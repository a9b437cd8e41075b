// Package parallel defines the scheduling contract of the scoring engine.
// Work is partitioned into contiguous, disjoint index chunks and handed to an
// Executor. The engine never falls back to sequential execution silently; the
// caller picks the strategy.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/gsva/pkg/errors"
)

// Chunk is a half-open index range [Start, End) over the partitioned axis
// (samples or gene sets).
type Chunk struct {
	Start int
	End   int
}

// Len returns the number of indices covered by the chunk.
func (c Chunk) Len() int { return c.End - c.Start }

// Partition splits n items into contiguous, disjoint chunks of at most
// chunkSize items. A chunkSize <= 0 derives one from the CPU count so that
// every core gets roughly one chunk (ceiling division, as small remainders
// should not spawn an extra unit of work).
func Partition(n, chunkSize int) []Chunk {
	if n <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		workers := runtime.GOMAXPROCS(0)
		if workers > n {
			workers = n
		}
		chunkSize = (n + workers - 1) / workers
	}

	chunks := make([]Chunk, 0, (n+chunkSize-1)/chunkSize)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, Chunk{Start: start, End: end})
	}
	return chunks
}

// Executor runs a function over every chunk. Implementations must invoke fn
// for each chunk exactly once and must not return before all invocations have
// finished or been abandoned due to error or context cancellation.
//
// Implementations beyond the two provided here (a multi-machine dispatcher,
// a pool shared across calls) only need to satisfy this interface.
type Executor interface {
	Do(ctx context.Context, chunks []Chunk, fn func(ctx context.Context, c Chunk) error) error
}

// Sequential executes chunks one after another on the calling goroutine.
type Sequential struct{}

// Do implements Executor.
func (Sequential) Do(ctx context.Context, chunks []Chunk, fn func(ctx context.Context, c Chunk) error) error {
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}
		if err := runChunk(ctx, c, fn); err != nil {
			return err
		}
	}
	return nil
}

// Pool executes chunks on a bounded goroutine pool. The first error cancels
// the remaining work.
type Pool struct {
	// Workers caps concurrent chunk executions. <= 0 means GOMAXPROCS.
	Workers int
}

// Do implements Executor.
func (p Pool) Do(ctx context.Context, chunks []Chunk, fn func(ctx context.Context, c Chunk) error) error {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, c := range chunks {
		c := c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.WithStack(err)
			}
			return runChunk(gctx, c, fn)
		})
	}
	return g.Wait()
}

// runChunk shields the scheduler from panics inside kernels and scorers.
func runChunk(ctx context.Context, c Chunk, fn func(ctx context.Context, c Chunk) error) error {
	return errors.SafeExecute("parallel.chunk", func() error {
		return fn(ctx, c)
	})
}
