// Package route provides the alternate allele model: segments tagged with an
// event and copy count, ordered into a route over a synthetic contig.
package route

import (
	"fmt"

	"github.com/monarch-initiative/svanna-go/internal/genome"
)

// Event tells what happened to the reference sequence within a segment.
type Event int

const (
	Unknown Event = iota
	Gap
	Deletion
	Duplication
	Insertion
	Inversion
	SNV
	Breakend
)

var eventNames = [...]string{
	Unknown:     "UNKNOWN",
	Gap:         "GAP",
	Deletion:    "DELETION",
	Duplication: "DUPLICATION",
	Insertion:   "INSERTION",
	Inversion:   "INVERSION",
	SNV:         "SNV",
	Breakend:    "BREAKEND",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "UNKNOWN"
	}
	return eventNames[e]
}

// Segment is a reference interval carried into the alternate allele a given
// number of times.
type Segment struct {
	genome.Region
	ID     string
	Event  Event
	Copies int

	insertedLength int
}

// NewSegment creates a segment, checking that copies agrees with event:
// deletions have 0 copies, duplications 2, everything else 1.
func NewSegment(id string, region genome.Region, event Event, copies int) (Segment, error) {
	want := 1
	switch event {
	case Deletion:
		want = 0
	case Duplication:
		want = 2
	}
	if copies != want {
		return Segment{}, fmt.Errorf("segment %s: %s requires %d copies, got %d", id, event, want, copies)
	}
	return Segment{Region: region, ID: id, Event: event, Copies: copies}, nil
}

// MustSegment is like NewSegment but panics on an invalid event/copies pair.
func MustSegment(id string, region genome.Region, event Event, copies int) Segment {
	s, err := NewSegment(id, region, event, copies)
	if err != nil {
		panic(err)
	}
	return s
}

// GapSegment creates an untouched segment.
func GapSegment(id string, region genome.Region) Segment {
	return Segment{Region: region, ID: id, Event: Gap, Copies: 1}
}

// NewInsertion creates an insertion segment at region (usually empty) that
// contributes length novel bases.
func NewInsertion(id string, region genome.Region, length int) Segment {
	return Segment{Region: region, ID: id, Event: Insertion, Copies: 1, insertedLength: length}
}

// Length returns the number of bases of a single copy. For insertions this is
// the inserted length rather than the reference span.
func (s Segment) Length() int {
	if s.Event == Insertion {
		return s.insertedLength
	}
	return s.Region.Length()
}

// ContributingBases returns the number of bases the segment adds to the route.
func (s Segment) ContributingBases() int {
	return s.Length() * s.Copies
}

func (s Segment) String() string {
	return fmt.Sprintf("%s[%s %s x%d]", s.ID, s.Event, s.Region, s.Copies)
}
