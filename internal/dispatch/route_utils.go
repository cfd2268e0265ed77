package dispatch

import (
	"fmt"

	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/monarch-initiative/svanna-go/internal/route"
	"github.com/monarch-initiative/svanna-go/internal/sv"
)

// BuildRoute builds the alternate route of variants within the zero-based
// window [upstream, downstream). Variants must be ordered along the strand of
// the first variant. Gaps between variants are expressed on the strand of the
// preceding variant.
func BuildRoute(upstream, downstream int, variants []*sv.Variant) (*route.Route, error) {
	if len(variants) == 0 {
		return nil, dispatchErrorf("no variants to route")
	}
	first := variants[0]

	var segments []route.Segment
	up, err := gapSegment("upstream", first.Contig, first.Strand, upstream, first.StartWith(genome.ZeroBased))
	if err != nil {
		return nil, err
	}
	segments = append(segments, up)

	vs, err := variantSegments(first, first.Strand)
	if err != nil {
		return nil, err
	}
	segments = append(segments, vs...)

	for i := 1; i < len(variants); i++ {
		previous, current := variants[i-1], variants[i]
		if !genome.SameContig(previous.Contig, current.Contig) {
			return nil, dispatchErrorf("different contigs (%s vs. %s) in variants %s and %s",
				previous.Contig.Name, current.Contig.Name, previous.ID, current.ID)
		}

		strand := previous.Strand
		gap, err := gapSegment(fmt.Sprintf("gap-%d", i), previous.Contig, strand,
			previous.EndOnStrand(strand), current.StartOnStrandWith(strand, genome.ZeroBased))
		if err != nil {
			return nil, err
		}
		segments = append(segments, gap)

		vs, err := variantSegments(current, strand)
		if err != nil {
			return nil, err
		}
		segments = append(segments, vs...)
	}

	last := variants[len(variants)-1]
	lastContig, lastStrand, lastEnd := last.Contig, last.Strand, last.End
	if last.IsBreakend() && last.Right != nil {
		lastContig, lastStrand, lastEnd = last.Right.Contig, last.Right.Strand, last.Right.End
	}
	down, err := gapSegment("downstream", lastContig, lastStrand, lastEnd, downstream)
	if err != nil {
		return nil, err
	}
	segments = append(segments, down)

	r, err := route.New(segments)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDispatch, err)
	}
	return r, nil
}

func gapSegment(id string, contig *genome.Contig, strand genome.Strand, start, end int) (route.Segment, error) {
	if start > end {
		return route.Segment{}, dispatchErrorf("%s gap has negative length (%d > %d)", id, start, end)
	}
	return route.GapSegment(id, genome.NewRegion(contig, strand, start, end)), nil
}

// variantSegments returns the segments of v expressed on strand. Breakend
// segments keep the strands of their mates.
func variantSegments(v *sv.Variant, strand genome.Strand) ([]route.Segment, error) {
	r := v.Region.WithStrand(strand).WithCoordinateSystem(genome.ZeroBased)

	var (
		s   route.Segment
		err error
	)
	switch v.Type {
	case sv.SNV:
		s, err = route.NewSegment(v.ID, r, route.SNV, 1)
	case sv.Inversion:
		s, err = route.NewSegment(v.ID, r, route.Inversion, 1)
	case sv.Deletion:
		s, err = route.NewSegment(v.ID, r, route.Deletion, 0)
	case sv.Duplication:
		s, err = route.NewSegment(v.ID, r, route.Duplication, 2)
	case sv.Insertion:
		s = route.NewInsertion(v.ID, r, v.ChangeLength)
	case sv.CNV:
		// Only copy number loss can be routed.
		if v.CopyNumber < 1 || v.CopyNumber >= 2 {
			return nil, dispatchErrorf("copy number was %d in variant %s", v.CopyNumber, v.ID)
		}
		s, err = route.NewSegment(v.ID, r, route.Deletion, v.CopyNumber-1)
	case sv.BND:
		if v.Left == nil || v.Right == nil {
			return nil, dispatchErrorf("breakend variant %s lacks a mate", v.ID)
		}
		left, err := route.NewSegment(v.Left.ID, v.Left.Region.WithCoordinateSystem(genome.ZeroBased), route.Breakend, 1)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDispatch, err)
		}
		right, err := route.NewSegment(v.Right.ID, v.Right.Region.WithCoordinateSystem(genome.ZeroBased), route.Breakend, 1)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDispatch, err)
		}
		return []route.Segment{left, right}, nil
	default:
		return nil, dispatchErrorf("unsupported variant type %s in variant %s", v.Type, v.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDispatch, err)
	}
	return []route.Segment{s}, nil
}
