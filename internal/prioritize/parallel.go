package prioritize

import (
	"context"
	"runtime"
	"sync"

	"github.com/monarch-initiative/svanna-go/internal/sv"
)

// WorkItem holds a variant ready for prioritization.
type WorkItem struct {
	Seq     int
	Variant *sv.Variant
	Extra   any // caller-specific data (e.g. the source VCF record)
}

// WorkResult holds the priority of a single variant.
type WorkResult struct {
	Seq      int
	Variant  *sv.Variant
	Priority SvPriority
	Extra    any
}

// Parallel prioritizes work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence order.
// If workers is 0, runtime.NumCPU() is used. Once ctx is done the remaining
// items are drained without being prioritized.
func Parallel(ctx context.Context, p Prioritizer, items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				if ctx.Err() != nil {
					continue
				}
				results <- WorkResult{
					Seq:      item.Seq,
					Variant:  item.Variant,
					Priority: p.Prioritize(item.Variant),
					Extra:    item.Extra,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect passes results to fn by ascending Seq, holding back those
// that arrive ahead of their turn. Once fn fails or ctx is done, the remaining
// results are discarded so the workers can finish. It returns when results is
// closed.
func OrderedCollect(ctx context.Context, results <-chan WorkResult, fn func(WorkResult) error) error {
	held := make(map[int]WorkResult)
	next := 0

	var err error
	for r := range results {
		if err != nil {
			continue
		}
		if err = ctx.Err(); err != nil {
			continue
		}
		held[r.Seq] = r
		for ready, ok := held[next]; ok; ready, ok = held[next] {
			delete(held, next)
			next++
			if err = fn(ready); err != nil {
				break
			}
		}
	}
	return err
}

// PrioritizeAll prioritizes variants with a pool of workers and returns the
// priorities in input order.
func PrioritizeAll(ctx context.Context, p Prioritizer, variants []*sv.Variant, workers int) ([]SvPriority, error) {
	items := make(chan WorkItem)
	go func() {
		defer close(items)
		for i, v := range variants {
			select {
			case items <- WorkItem{Seq: i, Variant: v}:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make([]SvPriority, 0, len(variants))
	err := OrderedCollect(ctx, Parallel(ctx, p, items, workers), func(r WorkResult) error {
		out = append(out, r.Priority)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
