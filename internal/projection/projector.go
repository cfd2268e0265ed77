package projection

import (
	"go.uber.org/zap"

	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/monarch-initiative/svanna-go/internal/route"
)

// Projector projects features onto routes. It only holds a logger and is safe
// for concurrent use.
type Projector struct {
	logger *zap.Logger
}

// NewProjector creates a projector.
func NewProjector() *Projector {
	return &Projector{logger: zap.NewNop()}
}

// SetLogger sets the logger used to report projections that cannot be made.
func (p *Projector) SetLogger(logger *zap.Logger) {
	p.logger = logger
}

// Project maps feature onto r. It returns no projection when the feature is
// not fully located on the route, when it has been deleted, or when its ends
// land in a combination of segments that cannot be resolved. A feature within
// a duplicated segment yields one projection per copy.
func Project[T Located](p *Projector, feature T, r *route.Route) []Projection[T] {
	loc := feature.Location()
	if !r.HasContig(loc.Contig) {
		return nil
	}

	startIdx, endIdx := -1, -1
	for i, s := range r.Segments() {
		if !genome.SameContig(s.Contig, loc.Contig) {
			continue
		}
		// Start and end are tested separately, as one-based positions.
		if s.ContainsPosition(loc.StartOnStrandWith(s.Strand, genome.OneBased)) {
			startIdx = i
		}
		if s.ContainsPosition(loc.EndOnStrand(s.Strand)) {
			endIdx = i
		}
		if startIdx >= 0 && endIdx >= 0 {
			break
		}
	}

	// Features partially outside the route are treated as not overlapping.
	if startIdx < 0 || endIdx < 0 {
		return nil
	}

	if loc.Length() == 0 {
		// An empty feature on a segment boundary belongs to the downstream segment.
		if startIdx == endIdx-1 {
			startIdx++
		} else if startIdx-1 == endIdx {
			endIdx++
		}
	}

	if startIdx == endIdx {
		return projectIntraSegment(p, feature, loc, startIdx, r)
	}
	return projectInterSegment(p, feature, loc, startIdx, endIdx, r)
}

// offsets returns the feature start and end relative to the start of s, on the strand of s.
func offsets(loc genome.Region, s route.Segment) (int, int) {
	start := loc.StartOnStrandWith(s.Strand, genome.ZeroBased) - s.StartWith(genome.ZeroBased)
	end := loc.EndOnStrand(s.Strand) - s.StartWith(genome.ZeroBased)
	return start, end
}

func newProjection[T Located](feature T, r *route.Route, start, end int, startLoc, endLoc Location, spanned []Location) Projection[T] {
	return Projection[T]{
		Region:        genome.NewRegion(r.NeoContig(), genome.Positive, start, end),
		Source:        feature,
		Route:         r,
		StartLocation: startLoc,
		EndLocation:   endLoc,
		Spanned:       spanned,
	}
}

func projectIntraSegment[T Located](p *Projector, feature T, loc genome.Region, idx int, r *route.Route) []Projection[T] {
	s := r.Segment(idx)
	before := r.BasesBefore(idx)
	startOff, endOff := offsets(loc, s)
	here := Location{SegmentIndex: idx, Event: s.Event}

	switch s.Event {
	case route.Deletion:
		return nil

	case route.Duplication:
		first := newProjection(feature, r, before+startOff, before+endOff, here, here, nil)
		second := newProjection(feature, r, before+startOff+s.Length(), before+endOff+s.Length(), here, here, nil)
		return []Projection[T]{first, second}

	case route.Inversion:
		// Mirror the feature within the segment and express it on the
		// opposite strand of the neo contig.
		start := before + s.Length() - endOff
		end := before + s.Length() - startOff
		proj := newProjection(feature, r, start, end, here, here, nil)
		proj.Region = proj.Region.WithStrand(genome.Negative)
		return []Projection[T]{proj}

	case route.Gap:
		return []Projection[T]{newProjection(feature, r, before+startOff, before+endOff, here, here, nil)}
	}

	p.logger.Warn("unexpected intra-segment event",
		zap.String("feature", loc.String()),
		zap.String("segment", s.ID),
		zap.Stringer("event", s.Event))
	return nil
}

func projectInterSegment[T Located](p *Projector, feature T, loc genome.Region, startIdx, endIdx int, r *route.Route) []Projection[T] {
	startSeg, endSeg := r.Segment(startIdx), r.Segment(endIdx)

	spanned := make([]Location, 0, endIdx-startIdx-1)
	for i := startIdx + 1; i < endIdx; i++ {
		spanned = append(spanned, Location{SegmentIndex: i, Event: r.Segment(i).Event})
	}
	startLoc := Location{SegmentIndex: startIdx, Event: startSeg.Event}
	endLoc := Location{SegmentIndex: endIdx, Event: endSeg.Event}

	translate := func(extra int) []Projection[T] {
		startOff, _ := offsets(loc, startSeg)
		_, endOff := offsets(loc, endSeg)
		start := startOff + r.BasesBefore(startIdx) + extra
		end := endOff + r.BasesBefore(endIdx)
		return []Projection[T]{newProjection(feature, r, start, end, startLoc, endLoc, spanned)}
	}

	switch {
	case startSeg.Event == route.Gap && endSeg.Event == route.Gap:
		return translate(0)

	case startSeg.Event == route.Gap:
		if endSeg.Event == route.Duplication {
			// The end lands in the first copy.
			return translate(0)
		}
		p.logger.Warn("unsupported inter-segment end event",
			zap.String("feature", loc.String()),
			zap.Stringer("event", endSeg.Event))
		return nil

	case endSeg.Event == route.Gap:
		if startSeg.Event == route.Duplication {
			// The start lands in the last copy.
			return translate(startSeg.Length() * (startSeg.Copies - 1))
		}
		p.logger.Warn("unsupported inter-segment start event",
			zap.String("feature", loc.String()),
			zap.Stringer("event", startSeg.Event))
		return nil
	}

	p.logger.Warn("unsupported inter-segment events",
		zap.String("feature", loc.String()),
		zap.Stringer("start_event", startSeg.Event),
		zap.Stringer("end_event", endSeg.Event))
	return nil
}
