package prioritize

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monarch-initiative/svanna-go/internal/sv"
)

// testVariants mixes routable, unroutable and interchromosomal variants.
func testVariants() []*sv.Variant {
	var out []*sv.Variant
	for i := range 40 {
		start := 1000 + i*2300
		id := fmt.Sprintf("v%d", i)
		switch i % 5 {
		case 0:
			out = append(out, sv.NewVariant(id, region(chr1, start, start+1500), sv.Deletion, -1500))
		case 1:
			out = append(out, sv.NewVariant(id, region(chr1, start, start+4000), sv.Duplication, 4000))
		case 2:
			out = append(out, sv.NewVariant(id, region(chr1, start, start+800), sv.Inversion, 0))
		case 3:
			out = append(out, sv.NewBreakendVariant(id,
				&sv.Breakend{ID: id + "_1", Region: region(chr1, start, start)},
				&sv.Breakend{ID: id + "_2", Region: region(chr2, start, start)}, 0))
		case 4:
			out = append(out, sv.NewBreakendVariant(id,
				&sv.Breakend{ID: id + "_1", Region: region(chr1, start, start)},
				&sv.Breakend{ID: id + "_2", Region: region(chr1, start+100, start+100)}, 0))
		}
	}
	return out
}

func TestPrioritizeAll_MatchesSequential(t *testing.T) {
	c := newComponents(t)
	prioritizers := map[string]Prioritizer{
		"additive": NewAdditivePrioritizer(c.dispatcher, c.data, c.evaluator),
		"granular": NewGranularPrioritizer(c.dispatcher, c.data, c.evaluator),
	}
	variants := testVariants()

	for name, p := range prioritizers {
		t.Run(name, func(t *testing.T) {
			sequential := make([]SvPriority, len(variants))
			for i, v := range variants {
				sequential[i] = p.Prioritize(v)
			}

			for _, workers := range []int{1, 4, 0} {
				parallel, err := PrioritizeAll(context.Background(), p, variants, workers)
				require.NoError(t, err)
				require.Len(t, parallel, len(sequential))
				for i := range sequential {
					assert.True(t, sequential[i].Equal(parallel[i]), "variant %s with %d workers", variants[i].ID, workers)
				}
			}
		})
	}
}

func TestParallel_OrderPreservation(t *testing.T) {
	c := newComponents(t)
	p := NewAdditivePrioritizer(c.dispatcher, c.data, c.evaluator)

	variants := testVariants()
	items := make(chan WorkItem, len(variants))
	for i, v := range variants {
		items <- WorkItem{Seq: i, Variant: v, Extra: i}
	}
	close(items)

	var collected []int
	err := OrderedCollect(context.Background(), Parallel(context.Background(), p, items, 8), func(r WorkResult) error {
		assert.Equal(t, r.Seq, r.Extra)
		assert.Same(t, variants[r.Seq], r.Variant)
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, collected, len(variants))
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestOrderedCollect(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		arrival []int
		failAt  int // fn fails for this Seq, -1 never
		want    []int
		wantErr error
	}{
		{"in order", context.Background(), []int{0, 1, 2}, -1, []int{0, 1, 2}, nil},
		{"reordered", context.Background(), []int{2, 0, 3, 1}, -1, []int{0, 1, 2, 3}, nil},
		{"stops on error", context.Background(), []int{1, 0, 2}, 0, []int{0}, errStop},
		{"stops after held results", context.Background(), []int{2, 1, 0, 3}, 1, []int{0, 1}, errStop},
		{"cancelled", cancelled, []int{0, 1}, -1, nil, context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(chan WorkResult, len(tt.arrival))
			for _, seq := range tt.arrival {
				results <- WorkResult{Seq: seq, Priority: Unknown()}
			}
			close(results)

			var got []int
			err := OrderedCollect(tt.ctx, results, func(r WorkResult) error {
				got = append(got, r.Seq)
				if r.Seq == tt.failAt {
					return errStop
				}
				return nil
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.Empty(t, results, "results must be drained")
		})
	}
}

var errStop = errors.New("stop")

func TestPrioritizeAll_Cancelled(t *testing.T) {
	c := newComponents(t)
	p := NewAdditivePrioritizer(c.dispatcher, c.data, c.evaluator)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := PrioritizeAll(ctx, p, testVariants(), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

