package parallel

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gsva/pkg/errors"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		chunkSize int
		want      []Chunk
	}{
		{
			name:      "exact multiple",
			n:         10,
			chunkSize: 5,
			want:      []Chunk{{0, 5}, {5, 10}},
		},
		{
			name:      "remainder chunk",
			n:         7,
			chunkSize: 3,
			want:      []Chunk{{0, 3}, {3, 6}, {6, 7}},
		},
		{
			name:      "chunk larger than n",
			n:         4,
			chunkSize: 100,
			want:      []Chunk{{0, 4}},
		},
		{
			name:      "empty input",
			n:         0,
			chunkSize: 8,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Partition(tt.n, tt.chunkSize))
		})
	}
}

func TestPartitionAutoSizeCoversAllIndices(t *testing.T) {
	chunks := Partition(1000, 0)
	require.NotEmpty(t, chunks)

	covered := 0
	prevEnd := 0
	for _, c := range chunks {
		assert.Equal(t, prevEnd, c.Start, "chunks must be contiguous")
		assert.Greater(t, c.End, c.Start)
		covered += c.Len()
		prevEnd = c.End
	}
	assert.Equal(t, 1000, covered)
}

func TestSequentialExecutesInOrder(t *testing.T) {
	var visited []int
	err := Sequential{}.Do(context.Background(), Partition(9, 4), func(_ context.Context, c Chunk) error {
		for i := c.Start; i < c.End; i++ {
			visited = append(visited, i)
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, visited, 9)
	for i, v := range visited {
		assert.Equal(t, i, v)
	}
}

func TestPoolCoversAllChunks(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int]bool)

	err := Pool{Workers: 4}.Do(context.Background(), Partition(100, 7), func(_ context.Context, c Chunk) error {
		mu.Lock()
		defer mu.Unlock()
		for i := c.Start; i < c.End; i++ {
			seen[i] = true
		}
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 100)
}

func TestPoolPropagatesFirstError(t *testing.T) {
	boom := errors.New("scoring failed")
	err := Pool{Workers: 2}.Do(context.Background(), Partition(50, 5), func(_ context.Context, c Chunk) error {
		if c.Start == 25 {
			return boom
		}
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestExecutorsRecoverPanics(t *testing.T) {
	for name, ex := range map[string]Executor{"sequential": Sequential{}, "pool": Pool{Workers: 2}} {
		t.Run(name, func(t *testing.T) {
			err := ex.Do(context.Background(), Partition(4, 2), func(_ context.Context, c Chunk) error {
				if c.Start == 2 {
					panic("kernel blew up")
				}
				return nil
			})
			require.Error(t, err)
			var panicErr *errors.PanicError
			assert.True(t, errors.As(err, &panicErr))
		})
	}
}

func TestSequentialHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Sequential{}.Do(ctx, Partition(10, 2), func(_ context.Context, _ Chunk) error {
		calls++
		return nil
	})
	require.Error(t, err)
	assert.Zero(t, calls)
}
