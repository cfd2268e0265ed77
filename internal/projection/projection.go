// Package projection maps reference-space features onto alternate allele routes.
package projection

import (
	"fmt"

	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/monarch-initiative/svanna-go/internal/route"
)

// Located is a feature with a reference location.
type Located interface {
	Location() genome.Region
}

// Location is the segment a feature coordinate lands in.
type Location struct {
	SegmentIndex int
	Event        route.Event
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%s", l.SegmentIndex, l.Event)
}

// Projection is a feature placed on the synthetic contig of a route. The
// embedded region lies on the route's neo contig; it is on the negative strand
// when the feature was inverted.
type Projection[T Located] struct {
	genome.Region
	Source        T
	Route         *route.Route
	StartLocation Location
	EndLocation   Location
	Spanned       []Location // Segments strictly between start and end
}

// IsIntraSegment reports whether both feature ends landed in one segment.
func (p Projection[T]) IsIntraSegment() bool {
	return p.StartLocation.SegmentIndex == p.EndLocation.SegmentIndex
}

// SpannedSegments returns the segments strictly between the start and end segments.
func (p Projection[T]) SpannedSegments() []route.Segment {
	out := make([]route.Segment, len(p.Spanned))
	for i, l := range p.Spanned {
		out[i] = p.Route.Segment(l.SegmentIndex)
	}
	return out
}

// Events returns the events of the start, spanned and end segments in route order.
func (p Projection[T]) Events() []route.Event {
	events := []route.Event{p.StartLocation.Event}
	if p.IsIntraSegment() {
		return events
	}
	for _, l := range p.Spanned {
		events = append(events, l.Event)
	}
	return append(events, p.EndLocation.Event)
}

// PositiveStart returns the start on the positive strand of the neo contig.
func (p Projection[T]) PositiveStart() int {
	return p.StartOnStrandWith(genome.Positive, genome.ZeroBased)
}

// PositiveEnd returns the end on the positive strand of the neo contig.
func (p Projection[T]) PositiveEnd() int {
	return p.EndOnStrand(genome.Positive)
}
