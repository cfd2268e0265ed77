package evaluate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/monarch-initiative/svanna-go/internal/cache"
	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/monarch-initiative/svanna-go/internal/impact"
	"github.com/monarch-initiative/svanna-go/internal/route"
)

var ctg = &genome.Contig{ID: 1, Name: "1", Length: 100000}

func pos(start, end int) genome.Region {
	return genome.NewRegion(ctg, genome.Positive, start, end)
}

type geneWeights map[string]float64

func (w geneWeights) GeneRelevance(g *cache.Gene) float64 { return w[g.ID] }

type enhancerWeights map[string]float64

func (w enhancerWeights) EnhancerRelevance(e *cache.Enhancer) float64 { return w[e.ID] }

func newGene(id string, start, end int) *cache.Gene {
	tx := &cache.Transcript{
		ID:       id + "-tx",
		GeneID:   id,
		Region:   pos(start, end),
		Exons:    []genome.Region{pos(start, start+500), pos(end-500, end)},
		CDSStart: start + 100,
		CDSEnd:   end - 100,
	}
	return &cache.Gene{ID: id, Symbol: id, Region: tx.Region, Transcripts: []*cache.Transcript{tx}}
}

// landscape: G1 and E1 share the first TAD, G2 lies beyond the boundary at 40050.
func landscape() RouteData {
	return RouteData{
		Genes:         []*cache.Gene{newGene("G1", 10000, 20000), newGene("G2", 50000, 60000)},
		Enhancers:     []*cache.Enhancer{{ID: "E1", Region: pos(25000, 26000)}},
		TadBoundaries: []*cache.TadBoundary{{ID: "T1", Region: pos(40000, 40100), Stability: 90}},
	}
}

func newEvaluator() *Evaluator {
	return NewEvaluator(
		impact.NewGeneCalculator(impact.DefaultGeneOptions()),
		impact.NewEnhancerCalculator(1),
		geneWeights{"G1": 1, "G2": 0},
		enhancerWeights{"E1": .5},
	)
}

func withRoute(t *testing.T, data RouteData, event route.Event, copies, start, end int) RouteData {
	t.Helper()
	r, err := route.New([]route.Segment{
		route.GapSegment("upstream", pos(0, start)),
		route.MustSegment("sv", pos(start, end), event, copies),
		route.GapSegment("downstream", pos(end, ctg.Length)),
	})
	require.NoError(t, err)
	data.Routes = route.Routes{References: []genome.Region{pos(0, ctg.Length)}, Alternates: []*route.Route{r}}
	return data
}

func TestEvaluationRegions(t *testing.T) {
	ref := pos(1000, 9000)
	tad := func(start int) *cache.TadBoundary {
		return &cache.TadBoundary{Region: pos(start, start+100)}
	}
	tests := []struct {
		name       string
		boundaries []*cache.TadBoundary
		want       [][2]int
	}{
		{"none", nil, [][2]int{{1000, 9000}}},
		{"one", []*cache.TadBoundary{tad(3000)}, [][2]int{{1000, 3050}, {3050, 9000}}},
		{"two", []*cache.TadBoundary{tad(3000), tad(6000)}, [][2]int{{1000, 9000}}},
		{"three unsorted", []*cache.TadBoundary{tad(7000), tad(3000), tad(5000)}, [][2]int{{1000, 5050}, {5050, 9000}}},
		{"four", []*cache.TadBoundary{tad(2000), tad(4000), tad(6000), tad(8000)}, [][2]int{{1000, 4050}, {4050, 6050}, {6050, 9000}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got [][2]int
			for _, r := range EvaluationRegions(ref, tt.boundaries) {
				got = append(got, [2]int{r.Start, r.End})
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_NeutralInversion(t *testing.T) {
	data := withRoute(t, landscape(), route.Inversion, 1, 30000, 31000)

	score, err := newEvaluator().Evaluate(data)
	require.NoError(t, err)
	assert.InDelta(t, 0, score, 1e-9)
}

func TestEvaluate_DeletedGene(t *testing.T) {
	data := withRoute(t, landscape(), route.Deletion, 0, 9000, 21000)
	e := newEvaluator()

	score, err := e.Evaluate(data)
	require.NoError(t, err)
	assert.InDelta(t, math.E+.5, score, 1e-9)

	deltas, err := e.EvaluateGranular(data)
	require.NoError(t, err)
	require.Len(t, deltas, 2)
	assert.InDelta(t, math.E+.5, deltas["G1"], 1e-9)
	assert.InDelta(t, 0, deltas["G2"], 1e-9)
}

func TestEvaluate_DuplicatedGene(t *testing.T) {
	data := withRoute(t, landscape(), route.Duplication, 2, 45000, 65000)
	e := newEvaluator()

	score, err := e.Evaluate(data)
	require.NoError(t, err)
	assert.InDelta(t, 3, score, 1e-9)

	deltas, err := e.EvaluateGranular(data)
	require.NoError(t, err)
	assert.InDelta(t, 0, deltas["G1"], 1e-9)
	assert.InDelta(t, 3, deltas["G2"], 1e-9)
}

func TestEvaluate_References(t *testing.T) {
	other := &genome.Contig{ID: 2, Name: "2", Length: 100000}
	tests := []struct {
		name       string
		references []genome.Region
		wantErr    bool
	}{
		{"single reference", []genome.Region{pos(0, 100000)}, false},
		{"references on distinct contigs", []genome.Region{pos(0, 100000), genome.NewRegion(other, genome.Positive, 0, 5000)}, false},
		{"two references on one contig", []genome.Region{pos(0, 50000), pos(50000, 100000)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := withRoute(t, landscape(), route.Deletion, 0, 9000, 21000)
			data.Routes.References = tt.references

			_, err := newEvaluator().Evaluate(data)
			_, granularErr := newEvaluator().EvaluateGranular(data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEvaluation)
				assert.ErrorIs(t, granularErr, ErrEvaluation)
				return
			}
			assert.NoError(t, err)
			assert.NoError(t, granularErr)
		})
	}
}

func TestEvaluate_LostGenesAreSkipped(t *testing.T) {
	tests := []struct {
		name   string
		event  route.Event
		copies int
		start  int
		end    int
		want   float64
		logged int
	}{
		{"inversion within coding exon", route.Inversion, 1, 10200, 10400, math.E + .5, 1},
		{"intronic inversion", route.Inversion, 1, 12000, 13000, 0, 0},
		{"coding exon deletion", route.Deletion, 0, 19600, 19700, .9 * math.E, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			e := newEvaluator()
			e.SetLogger(zap.New(core))

			deltas, err := e.EvaluateGranular(withRoute(t, landscape(), tt.event, tt.copies, tt.start, tt.end))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, deltas["G1"], 1e-9)
			assert.InDelta(t, 0, deltas["G2"], 1e-9)
			assert.Equal(t, tt.logged, logs.FilterMessage("gene lost on alternate allele").Len())
		})
	}
}

func TestFeatureDataService(t *testing.T) {
	genes := []*cache.Gene{newGene("G1", 10000, 20000), newGene("G2", 50000, 60000)}
	enhancers := []*cache.Enhancer{{ID: "E1", Region: pos(25000, 26000)}, {ID: "E2", Region: pos(70000, 71000)}}
	boundaries := []*cache.TadBoundary{
		{ID: "T1", Region: pos(40000, 40100), Stability: 90},
		{ID: "T2", Region: pos(15000, 15100), Stability: 90},
	}
	c, err := cache.New(genes, enhancers, boundaries)
	require.NoError(t, err)

	data := NewFeatureDataService(c).RouteData(route.Routes{References: []genome.Region{pos(5000, 55000)}})

	require.Len(t, data.Genes, 1)
	assert.Equal(t, "G1", data.Genes[0].ID)
	require.Len(t, data.Enhancers, 1)
	assert.Equal(t, "E1", data.Enhancers[0].ID)
	require.Len(t, data.TadBoundaries, 1)
	assert.Equal(t, "T1", data.TadBoundaries[0].ID)
}
