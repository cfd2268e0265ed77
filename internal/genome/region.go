package genome

import "fmt"

// Region is an interval on a contig strand. Coordinates are expressed on
// Strand: for a negative-strand region Start counts from the contig end.
type Region struct {
	Contig           *Contig
	Strand           Strand
	CoordinateSystem CoordinateSystem
	Start            int
	End              int
}

// NewRegion creates a zero-based region.
func NewRegion(contig *Contig, strand Strand, start, end int) Region {
	return Region{Contig: contig, Strand: strand, CoordinateSystem: ZeroBased, Start: start, End: end}
}

func (r Region) zeroStart() int {
	if r.CoordinateSystem == OneBased {
		return r.Start - 1
	}
	return r.Start
}

func (r Region) invert(pos int) int {
	if r.CoordinateSystem == OneBased {
		return r.Contig.Length + 1 - pos
	}
	return r.Contig.Length - pos
}

// StartWith returns Start converted to cs.
func (r Region) StartWith(cs CoordinateSystem) int {
	zs := r.zeroStart()
	if cs == OneBased {
		return zs + 1
	}
	return zs
}

// EndWith returns End converted to cs. The value is the same in both systems.
func (r Region) EndWith(CoordinateSystem) int {
	return r.End
}

// WithStrand returns the region expressed on strand s.
func (r Region) WithStrand(s Strand) Region {
	if r.Strand == s {
		return r
	}
	return Region{
		Contig:           r.Contig,
		Strand:           s,
		CoordinateSystem: r.CoordinateSystem,
		Start:            r.invert(r.End),
		End:              r.invert(r.Start),
	}
}

// WithCoordinateSystem returns the region expressed in cs.
func (r Region) WithCoordinateSystem(cs CoordinateSystem) Region {
	if r.CoordinateSystem == cs {
		return r
	}
	out := r
	out.CoordinateSystem = cs
	out.Start = r.StartWith(cs)
	return out
}

// StartOnStrand returns Start on strand s, in the region's coordinate system.
func (r Region) StartOnStrand(s Strand) int {
	return r.WithStrand(s).Start
}

// EndOnStrand returns End on strand s, in the region's coordinate system.
func (r Region) EndOnStrand(s Strand) int {
	return r.WithStrand(s).End
}

// StartOnStrandWith returns Start on strand s in coordinate system cs.
func (r Region) StartOnStrandWith(s Strand, cs CoordinateSystem) int {
	return r.WithStrand(s).StartWith(cs)
}

// EndOnStrandWith returns End on strand s in coordinate system cs.
func (r Region) EndOnStrandWith(s Strand, cs CoordinateSystem) int {
	return r.WithStrand(s).End
}

// Length returns the number of bases spanned by the region.
func (r Region) Length() int {
	return r.End - r.zeroStart()
}

// ContainsPosition reports whether the one-based position pos lies within the region.
func (r Region) ContainsPosition(pos int) bool {
	return r.StartWith(OneBased) <= pos && pos <= r.End
}

// Overlaps reports whether r and o share at least one base. An empty region
// overlaps a region that strictly surrounds its position.
func (r Region) Overlaps(o Region) bool {
	if !SameContig(r.Contig, o.Contig) {
		return false
	}
	os := o.StartOnStrandWith(r.Strand, ZeroBased)
	oe := o.EndOnStrandWith(r.Strand, ZeroBased)
	return r.zeroStart() < oe && os < r.End
}

// Contains reports whether o lies entirely within r.
func (r Region) Contains(o Region) bool {
	if !SameContig(r.Contig, o.Contig) {
		return false
	}
	os := o.StartOnStrandWith(r.Strand, ZeroBased)
	oe := o.EndOnStrandWith(r.Strand, ZeroBased)
	return r.zeroStart() <= os && oe <= r.End
}

// Midpoint returns the single-base zero-based region at the middle of r.
func (r Region) Midpoint() Region {
	zs := r.zeroStart()
	mid := zs + (r.End-zs)/2
	return Region{Contig: r.Contig, Strand: r.Strand, CoordinateSystem: ZeroBased, Start: mid, End: mid + 1}
}

func (r Region) String() string {
	name := "?"
	if r.Contig != nil {
		name = r.Contig.Name
	}
	return fmt.Sprintf("%s:%d-%d(%s)", name, r.StartWith(ZeroBased), r.End, r.Strand)
}
