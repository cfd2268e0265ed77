package cache

import (
	"testing"

	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testContig = &genome.Contig{ID: 1, Name: "1", Length: 100000}

func boundary(id string, start, end int, stability float64) *TadBoundary {
	return &TadBoundary{ID: id, Region: genome.NewRegion(testContig, genome.Positive, start, end), Stability: stability}
}

func ids[T interface{ Location() genome.Region }](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}

func boundaryID(b *TadBoundary) string { return b.ID }

func TestBuildBoundaryIndex_Empty(t *testing.T) {
	idx := BuildBoundaryIndex(nil)
	assert.Empty(t, idx.FindOverlaps(0, 100))
	_, ok := idx.Upstream(100, 0)
	assert.False(t, ok)
	_, ok = idx.Downstream(100, 0)
	assert.False(t, ok)
}

func TestBoundaryIndex_FindOverlaps(t *testing.T) {
	idx := BuildBoundaryIndex([]*TadBoundary{
		boundary("C", 5000, 6000, 90),
		boundary("A", 1000, 3000, 90),
		boundary("B", 2000, 2500, 90),
	})
	require.Equal(t, 3, idx.Len())

	assert.Equal(t, []string{"A", "B"}, ids(idx.FindOverlaps(2200, 2300), boundaryID))
	assert.Equal(t, []string{"A"}, ids(idx.FindOverlaps(2500, 2600), boundaryID))
	assert.Empty(t, idx.FindOverlaps(3000, 5000), "half-open ends do not overlap")
	assert.Equal(t, []string{"A", "B", "C"}, ids(idx.FindOverlaps(0, 10000), boundaryID))
}

func TestBoundaryIndex_UpstreamDownstream(t *testing.T) {
	idx := BuildBoundaryIndex([]*TadBoundary{
		boundary("weak-up", 4000, 4100, 10),
		boundary("up", 2000, 2100, 95),
		boundary("down", 8000, 8100, 95),
		boundary("weak-down", 6000, 6100, 50),
	})

	b, ok := idx.Upstream(5000, 80)
	require.True(t, ok)
	assert.Equal(t, "up", b.ID)

	b, ok = idx.Upstream(5000, 0)
	require.True(t, ok)
	assert.Equal(t, "weak-up", b.ID)

	b, ok = idx.Downstream(5000, 80)
	require.True(t, ok)
	assert.Equal(t, "down", b.ID)

	_, ok = idx.Downstream(8000, 80)
	assert.False(t, ok, "boundary must start after the position")

	_, ok = idx.Upstream(2100, 80)
	assert.False(t, ok, "boundary must end before the position")
}
