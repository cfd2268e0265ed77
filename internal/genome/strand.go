package genome

// Strand is the orientation of a region on its contig.
type Strand int8

const (
	Positive Strand = 1
	Negative Strand = -1
)

// Opposite returns the other strand.
func (s Strand) Opposite() Strand {
	if s == Negative {
		return Positive
	}
	return Negative
}

func (s Strand) String() string {
	if s == Negative {
		return "-"
	}
	return "+"
}

// ParseStrand converts "+"/"-" (or "1"/"-1") into a Strand. Anything that is
// not negative is treated as positive.
func ParseStrand(s string) Strand {
	if s == "-" || s == "-1" {
		return Negative
	}
	return Positive
}

// CoordinateSystem tells how Start is interpreted. Both systems share the End
// coordinate: zero-based is half-open [start, end), one-based is closed [start, end].
type CoordinateSystem int8

const (
	ZeroBased CoordinateSystem = iota
	OneBased
)

func (cs CoordinateSystem) String() string {
	if cs == OneBased {
		return "one-based"
	}
	return "zero-based"
}
