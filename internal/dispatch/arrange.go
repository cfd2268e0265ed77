package dispatch

import (
	"fmt"
	"sort"

	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/monarch-initiative/svanna-go/internal/sv"
)

// Arrangement is a list of variants ready for routing.
type Arrangement struct {
	Variants      []*sv.Variant
	BreakendIndex int // -1 if there is no breakend
}

// HasBreakend reports whether the arrangement contains a breakend variant.
func (a Arrangement) HasBreakend() bool {
	return a.BreakendIndex >= 0
}

// Arrange validates variants and orders them for routing. Non-breakend
// variants must share a contig and must not overlap; they are returned on the
// positive strand sorted by start. A breakend must be dispatched alone and its
// mates must lie on different contigs.
func Arrange(variants []*sv.Variant) (Arrangement, error) {
	if len(variants) == 0 {
		return Arrangement{}, dispatchErrorf("variant list must not be empty")
	}

	breakendIdx, breakends := -1, 0
	for i, v := range variants {
		if v.IsBreakend() {
			breakendIdx = i
			breakends++
		}
	}

	switch {
	case breakends > 1:
		return Arrangement{}, dispatchErrorf("unable to arrange %d (>1) breakend variants", breakends)
	case breakends == 1:
		bv := variants[breakendIdx]
		if bv.Left == nil || bv.Right == nil {
			return Arrangement{}, dispatchErrorf("breakend variant %s lacks a mate", bv.ID)
		}
		if genome.SameContig(bv.Left.Contig, bv.Right.Contig) {
			return Arrangement{}, fmt.Errorf("%w: %s joins %s and %s", ErrIntrachromosomalBreakend, bv.ID, bv.Left.Region, bv.Right.Region)
		}
		if len(variants) != 1 {
			return Arrangement{}, dispatchErrorf("dispatching a breakend together with %d other variants is not supported", len(variants)-1)
		}
		return Arrangement{Variants: []*sv.Variant{bv}, BreakendIndex: 0}, nil
	}

	contig := variants[0].Contig
	sorted := make([]*sv.Variant, len(variants))
	for i, v := range variants {
		if !genome.SameContig(contig, v.Contig) {
			return Arrangement{}, dispatchErrorf("unable to arrange variants on more than one contig (%s, %s)", contig.Name, v.Contig.Name)
		}
		p := *v
		p.Region = v.Region.WithStrand(genome.Positive)
		sorted[i] = &p
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartWith(genome.ZeroBased) < sorted[j].StartWith(genome.ZeroBased)
	})

	previous := sorted[0]
	for _, current := range sorted[1:] {
		if previous.Overlaps(current.Region) {
			return Arrangement{}, dispatchErrorf("unable to arrange overlapping variants %s and %s", previous.ID, current.ID)
		}
		previous = current
	}

	return Arrangement{Variants: sorted, BreakendIndex: -1}, nil
}
