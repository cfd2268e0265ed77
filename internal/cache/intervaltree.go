package cache

import "sort"

// BoundaryIndex answers overlap and nearest-neighbour queries over the TAD
// boundaries of one contig using a sorted-slice approach. Coordinates are
// zero-based on the positive strand. Boundaries are loaded once and never
// modified after build.
type BoundaryIndex struct {
	byStart []boundarySpan
	maxEnd  []int // maxEnd[i] = max(end) for byStart[i:]
	byEnd   []boundarySpan
}

type boundarySpan struct {
	start    int
	end      int
	boundary *TadBoundary
}

// BuildBoundaryIndex creates an index from boundaries located on a single contig.
func BuildBoundaryIndex(boundaries []*TadBoundary) *BoundaryIndex {
	if len(boundaries) == 0 {
		return &BoundaryIndex{}
	}

	byStart := make([]boundarySpan, len(boundaries))
	for i, b := range boundaries {
		r := positive(b.Region)
		byStart[i] = boundarySpan{start: r.Start, end: r.End, boundary: b}
	}
	byEnd := append([]boundarySpan(nil), byStart...)

	sort.SliceStable(byStart, func(i, j int) bool {
		return byStart[i].start < byStart[j].start
	})
	sort.SliceStable(byEnd, func(i, j int) bool {
		return byEnd[i].end < byEnd[j].end
	})

	// Build suffix-max array: maxEnd[i] = max(end) for byStart[i:]
	maxEnd := make([]int, len(byStart))
	maxEnd[len(byStart)-1] = byStart[len(byStart)-1].end
	for i := len(byStart) - 2; i >= 0; i-- {
		maxEnd[i] = max(byStart[i].end, maxEnd[i+1])
	}

	return &BoundaryIndex{byStart: byStart, maxEnd: maxEnd, byEnd: byEnd}
}

// Len returns the number of indexed boundaries.
func (x *BoundaryIndex) Len() int {
	return len(x.byStart)
}

// FindOverlaps returns boundaries overlapping the half-open range [start, end)
// ordered by start.
func (x *BoundaryIndex) FindOverlaps(start, end int) []*TadBoundary {
	if len(x.byStart) == 0 {
		return nil
	}

	// Candidates must start before end.
	hi := sort.Search(len(x.byStart), func(i int) bool {
		return x.byStart[i].start >= end
	})

	var result []*TadBoundary
	for i := 0; i < hi; i++ {
		// maxEnd[i] covers byStart[i:], nothing further can reach start.
		if x.maxEnd[i] <= start {
			break
		}
		if x.byStart[i].end > start {
			result = append(result, x.byStart[i].boundary)
		}
	}
	return result
}

// Upstream returns the boundary with the greatest end that ends before pos and
// whose stability exceeds threshold.
func (x *BoundaryIndex) Upstream(pos int, threshold float64) (*TadBoundary, bool) {
	i := sort.Search(len(x.byEnd), func(i int) bool {
		return x.byEnd[i].end >= pos
	})
	for i--; i >= 0; i-- {
		if b := x.byEnd[i].boundary; b.Stability > threshold {
			return b, true
		}
	}
	return nil, false
}

// Downstream returns the boundary with the smallest start that begins after
// pos and whose stability exceeds threshold.
func (x *BoundaryIndex) Downstream(pos int, threshold float64) (*TadBoundary, bool) {
	i := sort.Search(len(x.byStart), func(i int) bool {
		return x.byStart[i].start > pos
	})
	for ; i < len(x.byStart); i++ {
		if b := x.byStart[i].boundary; b.Stability > threshold {
			return b, true
		}
	}
	return nil, false
}
