package dispatch

import (
	"fmt"

	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/monarch-initiative/svanna-go/internal/route"
	"github.com/monarch-initiative/svanna-go/internal/sv"
)

// BreakendRoutes builds the two derivative routes of a reciprocal
// translocation. The left route joins the sequence upstream of the left mate
// to the sequence downstream of the right mate, with the inserted sequence (if
// any) in between. The right route joins the sequence upstream of the right
// mate to the sequence downstream of the left mate.
func BreakendRoutes(bv *sv.Variant, leftRef, rightRef genome.Region) ([]*route.Route, error) {
	left, right := bv.Left, bv.Right
	if left == nil || right == nil {
		return nil, dispatchErrorf("breakend variant %s lacks a mate", bv.ID)
	}
	lr := left.Region.WithCoordinateSystem(genome.ZeroBased)
	rr := right.Region.WithCoordinateSystem(genome.ZeroBased)

	leftBnd, err := route.NewSegment(left.ID, lr, route.Breakend, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDispatch, err)
	}
	rightBnd, err := route.NewSegment(right.ID, rr, route.Breakend, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDispatch, err)
	}

	leftUpstream, err := gapSegment("left-upstream", lr.Contig, lr.Strand,
		leftRef.StartOnStrandWith(lr.Strand, genome.ZeroBased), lr.Start)
	if err != nil {
		return nil, err
	}
	rightDownstream, err := gapSegment("right-downstream", rr.Contig, rr.Strand,
		rr.End, rightRef.EndOnStrand(rr.Strand))
	if err != nil {
		return nil, err
	}
	rightUpstream, err := gapSegment("right-upstream", rr.Contig, rr.Strand,
		rightRef.StartOnStrandWith(rr.Strand, genome.ZeroBased), rr.Start)
	if err != nil {
		return nil, err
	}
	leftDownstream, err := gapSegment("left-downstream", lr.Contig, lr.Strand,
		lr.End, leftRef.EndOnStrand(lr.Strand))
	if err != nil {
		return nil, err
	}

	leftSegments := []route.Segment{leftUpstream, leftBnd}
	if bv.ChangeLength != 0 {
		ins := genome.NewRegion(lr.Contig, lr.Strand, lr.End, lr.End)
		leftSegments = append(leftSegments, route.NewInsertion("ins"+bv.ID, ins, bv.ChangeLength))
	}
	leftSegments = append(leftSegments, rightBnd, rightDownstream)

	rightSegments := []route.Segment{rightUpstream, rightBnd, leftBnd, leftDownstream}

	leftRoute, err := route.New(leftSegments)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDispatch, err)
	}
	rightRoute, err := route.New(rightSegments)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDispatch, err)
	}
	return []*route.Route{leftRoute, rightRoute}, nil
}
