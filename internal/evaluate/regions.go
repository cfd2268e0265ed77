package evaluate

import (
	"slices"

	"github.com/monarch-initiative/svanna-go/internal/cache"
	"github.com/monarch-initiative/svanna-go/internal/genome"
)

// EvaluationRegions partitions reference into sub-regions delimited by the
// midpoints of the TAD boundaries. A single boundary splits the reference in
// two. With several boundaries the reference is cut at consecutive midpoints
// and the outermost pieces are stretched to the reference edges.
func EvaluationRegions(reference genome.Region, boundaries []*cache.TadBoundary) []genome.Region {
	ref := reference.WithCoordinateSystem(genome.ZeroBased)
	piece := func(start, end int) genome.Region {
		return genome.NewRegion(ref.Contig, ref.Strand, start, end)
	}

	mids := make([]int, len(boundaries))
	for i, b := range boundaries {
		mids[i] = b.Midpoint().StartOnStrandWith(ref.Strand, genome.ZeroBased)
	}
	slices.Sort(mids)

	switch len(mids) {
	case 0:
		return []genome.Region{ref}
	case 1:
		return []genome.Region{piece(ref.Start, mids[0]), piece(mids[0], ref.End)}
	}

	regions := make([]genome.Region, 0, len(mids)-1)
	for i := 1; i < len(mids); i++ {
		regions = append(regions, piece(mids[i-1], mids[i]))
	}
	first, last := &regions[0], &regions[len(regions)-1]
	first.Start = min(first.Start, ref.Start)
	last.End = max(last.End, ref.End)
	return regions
}

// overlapping returns the items whose location overlaps region.
func overlapping[T interface{ Location() genome.Region }](items []T, region genome.Region) []T {
	var out []T
	for _, it := range items {
		if it.Location().Overlaps(region) {
			out = append(out, it)
		}
	}
	return out
}
