package dispatch

import (
	"testing"

	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/monarch-initiative/svanna-go/internal/route"
	"github.com/monarch-initiative/svanna-go/internal/sv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	chr1 = &genome.Contig{ID: 1, Name: "1", Length: 10000}
	chr2 = &genome.Contig{ID: 2, Name: "2", Length: 20000}
)

func variant(id string, t sv.VariantType, start, end int) *sv.Variant {
	return sv.NewVariant(id, genome.NewRegion(chr1, genome.Positive, start, end), t, end-start)
}

func cnv(id string, start, end, copyNumber int) *sv.Variant {
	v := variant(id, sv.CNV, start, end)
	v.CopyNumber = copyNumber
	return v
}

func breakendVariant(id string, left, right genome.Region, inserted int) *sv.Variant {
	return sv.NewBreakendVariant(id,
		&sv.Breakend{ID: id + "-l", Region: left},
		&sv.Breakend{ID: id + "-r", Region: right},
		inserted)
}

func events(r *route.Route) []route.Event {
	var out []route.Event
	for _, s := range r.Segments() {
		out = append(out, s.Event)
	}
	return out
}

func TestBuildRoute_SingleVariant(t *testing.T) {
	tests := []struct {
		name    string
		v       *sv.Variant
		event   route.Event
		copies  int
		altSize int
	}{
		{"deletion", variant("del", sv.Deletion, 1000, 1200), route.Deletion, 0, 1800},
		{"duplication", variant("dup", sv.Duplication, 1000, 1200), route.Duplication, 2, 2200},
		{"inversion", variant("inv", sv.Inversion, 1000, 1200), route.Inversion, 1, 2000},
		{"snv", variant("snv", sv.SNV, 1000, 1001), route.SNV, 1, 2000},
		{"cnv loss", cnv("cnv", 1000, 1200, 1), route.Deletion, 0, 1800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := BuildRoute(0, 2000, []*sv.Variant{tt.v})
			require.NoError(t, err)

			segs := r.Segments()
			require.Len(t, segs, 3)
			assert.Equal(t, "upstream", segs[0].ID)
			assert.Equal(t, 0, segs[0].Start)
			assert.Equal(t, tt.v.Start, segs[0].End)
			assert.Equal(t, tt.event, segs[1].Event)
			assert.Equal(t, tt.copies, segs[1].Copies)
			assert.Equal(t, "downstream", segs[2].ID)
			assert.Equal(t, tt.v.End, segs[2].Start)
			assert.Equal(t, 2000, segs[2].End)
			assert.Equal(t, tt.altSize, r.Length())
		})
	}
}

func TestBuildRoute_Insertion(t *testing.T) {
	ins := sv.NewVariant("ins", genome.NewRegion(chr1, genome.Positive, 1000, 1000), sv.Insertion, 300)
	r, err := BuildRoute(0, 2000, []*sv.Variant{ins})
	require.NoError(t, err)
	assert.Equal(t, []route.Event{route.Gap, route.Insertion, route.Gap}, events(r))
	assert.Equal(t, 300, r.Segment(1).Length())
	assert.Equal(t, 2300, r.Length())
}

func TestBuildRoute_CopyNumber(t *testing.T) {
	for _, cn := range []int{0, 2, 3} {
		_, err := BuildRoute(0, 2000, []*sv.Variant{cnv("cnv", 1000, 1200, cn)})
		assert.ErrorIs(t, err, ErrDispatch, "copy number %d", cn)
	}
}

func TestBuildRoute_MultipleVariants(t *testing.T) {
	r, err := BuildRoute(100, 5000, []*sv.Variant{
		variant("del", sv.Deletion, 1000, 1200),
		variant("dup", sv.Duplication, 2000, 2500),
		variant("inv", sv.Inversion, 3000, 3100),
	})
	require.NoError(t, err)

	assert.Equal(t, []route.Event{
		route.Gap, route.Deletion, route.Gap, route.Duplication, route.Gap, route.Inversion, route.Gap,
	}, events(r))
	gap1 := r.Segment(2)
	assert.Equal(t, "gap-1", gap1.ID)
	assert.Equal(t, 1200, gap1.Start)
	assert.Equal(t, 2000, gap1.End)
	assert.Equal(t, "gap-2", r.Segment(4).ID)
	assert.Equal(t, 900+0+800+1000+500+100+1900, r.Length())
}

func TestBuildRoute_Errors(t *testing.T) {
	other := sv.NewVariant("other", genome.NewRegion(chr2, genome.Positive, 3000, 3100), sv.Deletion, -100)

	tests := []struct {
		name     string
		up, down int
		variants []*sv.Variant
	}{
		{"empty", 0, 100, nil},
		{"different contigs", 0, 5000, []*sv.Variant{variant("del", sv.Deletion, 1000, 1200), other}},
		{"unsupported type", 0, 5000, []*sv.Variant{variant("x", sv.Unknown, 1000, 1200)}},
		{"upstream after variant", 1500, 5000, []*sv.Variant{variant("del", sv.Deletion, 1000, 1200)}},
		{"breakend without mate", 0, 5000, []*sv.Variant{variant("bnd", sv.BND, 1000, 1000)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildRoute(tt.up, tt.down, tt.variants)
			assert.ErrorIs(t, err, ErrDispatch)
		})
	}
}

func TestBuildRoute_Breakend(t *testing.T) {
	bv := breakendVariant("bnd",
		genome.NewRegion(chr1, genome.Positive, 1000, 1000),
		genome.NewRegion(chr2, genome.Negative, 5000, 5000), 0)

	r, err := BuildRoute(500, 6000, []*sv.Variant{bv})
	require.NoError(t, err)
	assert.Equal(t, []route.Event{route.Gap, route.Breakend, route.Breakend, route.Gap}, events(r))

	down := r.Segment(3)
	assert.Same(t, chr2, down.Contig)
	assert.Equal(t, genome.Negative, down.Strand)
	assert.Equal(t, 5000, down.Start)
	assert.Equal(t, 6000, down.End)
	assert.Equal(t, 500+1000, r.Length())
}
