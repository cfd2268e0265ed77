package route

import (
	"errors"

	"github.com/monarch-initiative/svanna-go/internal/genome"
)

// ErrEmptyRoute is returned when a route is built without segments.
var ErrEmptyRoute = errors.New("route must contain at least one segment")

// Route is an ordered list of segments describing the alternate allele as a
// single synthetic contig. A Route is immutable once built.
type Route struct {
	segments []Segment
	contigs  []*genome.Contig
	before   []int // bases contributed by segments preceding index i
	neo      *genome.Contig
}

// New creates a route from segments.
func New(segments []Segment) (*Route, error) {
	if len(segments) == 0 {
		return nil, ErrEmptyRoute
	}
	r := &Route{
		segments: append([]Segment(nil), segments...),
		before:   make([]int, len(segments)+1),
	}
	for i, s := range r.segments {
		r.before[i+1] = r.before[i] + s.ContributingBases()
		if !r.HasContig(s.Contig) {
			r.contigs = append(r.contigs, s.Contig)
		}
	}
	r.neo = genome.NewSyntheticContig("neo", r.before[len(r.segments)])
	return r, nil
}

// Segments returns the ordered segments. The slice must not be modified.
func (r *Route) Segments() []Segment {
	return r.segments
}

// Segment returns the segment at index i.
func (r *Route) Segment(i int) Segment {
	return r.segments[i]
}

// Contigs returns the reference contigs touched by the route in order of first appearance.
func (r *Route) Contigs() []*genome.Contig {
	return r.contigs
}

// HasContig reports whether any segment lies on c.
func (r *Route) HasContig(c *genome.Contig) bool {
	for _, x := range r.contigs {
		if genome.SameContig(x, c) {
			return true
		}
	}
	return false
}

// NeoContig returns the synthetic contig spanned by the route.
func (r *Route) NeoContig() *genome.Contig {
	return r.neo
}

// Length returns the number of bases of the alternate allele.
func (r *Route) Length() int {
	return r.before[len(r.segments)]
}

// BasesBefore returns the number of bases contributed by segments [0, i).
func (r *Route) BasesBefore(i int) int {
	return r.before[i]
}

// Routes pairs the reference regions affected by a variant with the
// alternate routes that replace them.
type Routes struct {
	References []genome.Region
	Alternates []*Route
}

// IsIntrachromosomal reports whether all references lie on one contig.
func (rs Routes) IsIntrachromosomal() bool {
	for i := 1; i < len(rs.References); i++ {
		if !genome.SameContig(rs.References[0].Contig, rs.References[i].Contig) {
			return false
		}
	}
	return true
}
