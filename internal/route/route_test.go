package route

import (
	"testing"

	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ctg1 = &genome.Contig{ID: 1, Name: "1", Length: 10000}
	ctg2 = &genome.Contig{ID: 2, Name: "2", Length: 20000}
)

func region(c *genome.Contig, start, end int) genome.Region {
	return genome.NewRegion(c, genome.Positive, start, end)
}

func TestNewSegment_CopiesInvariant(t *testing.T) {
	tests := []struct {
		event  Event
		copies int
		ok     bool
	}{
		{Deletion, 0, true},
		{Deletion, 1, false},
		{Duplication, 2, true},
		{Duplication, 1, false},
		{Gap, 1, true},
		{Gap, 0, false},
		{Inversion, 1, true},
		{SNV, 1, true},
		{Breakend, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.event.String(), func(t *testing.T) {
			_, err := NewSegment("s", region(ctg1, 0, 10), tt.event, tt.copies)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSegment_ContributingBases(t *testing.T) {
	del := MustSegment("del", region(ctg1, 100, 200), Deletion, 0)
	dup := MustSegment("dup", region(ctg1, 100, 200), Duplication, 2)
	gap := GapSegment("gap", region(ctg1, 100, 200))
	ins := NewInsertion("ins", region(ctg1, 100, 100), 35)

	assert.Equal(t, 0, del.ContributingBases())
	assert.Equal(t, 200, dup.ContributingBases())
	assert.Equal(t, 100, gap.ContributingBases())
	assert.Equal(t, 35, ins.Length())
	assert.Equal(t, 0, ins.Region.Length())
	assert.Equal(t, 35, ins.ContributingBases())
}

func TestNew_Empty(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrEmptyRoute)
}

func TestRoute_LengthInvariant(t *testing.T) {
	segments := []Segment{
		GapSegment("upstream", region(ctg1, 0, 1000)),
		MustSegment("del", region(ctg1, 1000, 1200), Deletion, 0),
		GapSegment("gap-0", region(ctg1, 1200, 1500)),
		MustSegment("dup", region(ctg1, 1500, 1550), Duplication, 2),
		GapSegment("gap-1", region(ctg1, 1550, 1600)),
		NewInsertion("ins", region(ctg1, 1600, 1600), 12),
		MustSegment("inv", region(ctg1, 1600, 1700), Inversion, 1),
		MustSegment("bnd", genome.NewRegion(ctg2, genome.Negative, 500, 500), Breakend, 1),
		GapSegment("downstream", genome.NewRegion(ctg2, genome.Negative, 500, 900)),
	}
	r, err := New(segments)
	require.NoError(t, err)

	total := 0
	for i, s := range r.Segments() {
		assert.Equal(t, total, r.BasesBefore(i), "bases before %s", s.ID)
		total += s.ContributingBases()
	}
	assert.Equal(t, 1000+0+300+100+50+12+100+0+400, total)
	assert.Equal(t, total, r.Length())
	assert.Equal(t, total, r.NeoContig().Length)
	assert.Equal(t, []*genome.Contig{ctg1, ctg2}, r.Contigs())
	assert.True(t, r.HasContig(ctg2))
	assert.False(t, r.HasContig(&genome.Contig{ID: 3, Name: "3"}))
}

func TestRoute_NeoContigIsFresh(t *testing.T) {
	segs := []Segment{GapSegment("g", region(ctg1, 0, 10))}
	a, err := New(segs)
	require.NoError(t, err)
	b, err := New(segs)
	require.NoError(t, err)
	assert.NotSame(t, a.NeoContig(), b.NeoContig())
}

func TestRoutes_IsIntrachromosomal(t *testing.T) {
	assert.True(t, Routes{References: []genome.Region{region(ctg1, 0, 10)}}.IsIntrachromosomal())
	assert.False(t, Routes{References: []genome.Region{region(ctg1, 0, 10), region(ctg2, 0, 10)}}.IsIntrachromosomal())
}
