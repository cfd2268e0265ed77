package evaluate

import (
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/monarch-initiative/svanna-go/internal/cache"
	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/monarch-initiative/svanna-go/internal/impact"
	"github.com/monarch-initiative/svanna-go/internal/projection"
	"github.com/monarch-initiative/svanna-go/internal/route"
)

// Evaluator scores genes and their enhancers on the reference and on the
// alternate alleles of a variant.
type Evaluator struct {
	genes             impact.Calculator[*cache.Gene]
	enhancers         impact.Calculator[*cache.Enhancer]
	geneWeights       GeneWeightCalculator
	enhancerRelevance EnhancerGeneRelevanceCalculator
	projector         *projection.Projector
	logger            *zap.Logger
}

// NewEvaluator creates an evaluator.
func NewEvaluator(genes impact.Calculator[*cache.Gene], enhancers impact.Calculator[*cache.Enhancer],
	geneWeights GeneWeightCalculator, enhancerRelevance EnhancerGeneRelevanceCalculator) *Evaluator {
	return &Evaluator{
		genes:             genes,
		enhancers:         enhancers,
		geneWeights:       geneWeights,
		enhancerRelevance: enhancerRelevance,
		projector:         projection.NewProjector(),
		logger:            zap.NewNop(),
	}
}

// SetLogger sets the logger of the evaluator and its projector.
func (e *Evaluator) SetLogger(logger *zap.Logger) {
	e.logger = logger
	e.projector.SetLogger(logger)
}

// Evaluate returns the absolute difference between the summed reference and
// alternate gene scores.
func (e *Evaluator) Evaluate(data RouteData) (float64, error) {
	ref, err := e.referenceScores(data)
	if err != nil {
		return 0, err
	}
	alt := e.alternateScores(data)

	var refSum, altSum float64
	for _, s := range ref {
		refSum += s
	}
	for _, s := range alt {
		altSum += s
	}
	return math.Abs(refSum - altSum), nil
}

// EvaluateGranular returns the absolute difference between reference and
// alternate scores for every gene of the data. A gene missing on one side
// scores 0 there.
func (e *Evaluator) EvaluateGranular(data RouteData) (map[string]float64, error) {
	ref, err := e.referenceScores(data)
	if err != nil {
		return nil, err
	}
	alt := e.alternateScores(data)

	deltas := make(map[string]float64, len(data.Genes))
	for _, g := range data.Genes {
		deltas[g.ID] = math.Abs(ref[g.ID] - alt[g.ID])
	}
	return deltas, nil
}

func (e *Evaluator) referenceScores(data RouteData) (map[string]float64, error) {
	seen := make(map[*genome.Contig]bool, len(data.Routes.References))
	for _, ref := range data.Routes.References {
		for c := range seen {
			if genome.SameContig(c, ref.Contig) {
				return nil, fmt.Errorf("%w: two reference regions on contig %s", ErrEvaluation, ref.Contig.Name)
			}
		}
		seen[ref.Contig] = true
	}

	scores := make(map[string]float64, len(data.Genes))
	for _, ref := range data.Routes.References {
		var boundaries []*cache.TadBoundary
		for _, b := range data.TadBoundaries {
			if genome.SameContig(b.Region.Contig, ref.Contig) {
				boundaries = append(boundaries, b)
			}
		}

		for _, region := range EvaluationRegions(ref, boundaries) {
			var enhancerScore float64
			for _, enh := range overlapping(data.Enhancers, region) {
				enhancerScore += e.enhancers.NoImpact() * e.enhancerRelevance.EnhancerRelevance(enh)
			}
			for _, g := range overlapping(data.Genes, region) {
				scores[g.ID] += e.genes.NoImpact()*math.Exp(e.geneWeights.GeneRelevance(g)) + enhancerScore
			}
		}
	}
	return scores, nil
}

type featureKind int

const (
	tadFeature featureKind = iota
	geneFeature
	enhancerFeature
)

// placed is a projection of any feature kind on a route.
type placed struct {
	kind     featureKind
	start    int
	end      int
	gene     projection.Projection[*cache.Gene]
	enhancer projection.Projection[*cache.Enhancer]
}

func (e *Evaluator) project(data RouteData, r *route.Route) []placed {
	var out []placed
	for _, b := range data.TadBoundaries {
		for _, p := range projection.Project(e.projector, b, r) {
			out = append(out, placed{kind: tadFeature, start: p.PositiveStart(), end: p.PositiveEnd()})
		}
	}
	for _, g := range data.Genes {
		for _, p := range projection.Project(e.projector, g, r) {
			out = append(out, placed{kind: geneFeature, start: p.PositiveStart(), end: p.PositiveEnd(), gene: p})
		}
	}
	for _, enh := range data.Enhancers {
		for _, p := range projection.Project(e.projector, enh, r) {
			out = append(out, placed{kind: enhancerFeature, start: p.PositiveStart(), end: p.PositiveEnd(), enhancer: p})
		}
	}
	slices.SortStableFunc(out, func(a, b placed) int {
		if a.start != b.start {
			return a.start - b.start
		}
		return a.end - b.end
	})
	return out
}

func (e *Evaluator) alternateScores(data RouteData) map[string]float64 {
	scores := make(map[string]float64, len(data.Genes))
	for _, r := range data.Routes.Alternates {
		placements := e.project(data, r)
		if len(placements) > 0 && placements[0].kind == tadFeature {
			placements = placements[1:]
		}
		if len(placements) > 0 && placements[len(placements)-1].kind == tadFeature {
			placements = placements[:len(placements)-1]
		}

		group := 0
		for i := 0; i <= len(placements); i++ {
			if i == len(placements) || placements[i].kind == tadFeature {
				e.scoreGroup(placements[group:i], scores)
				group = i + 1
			}
		}
	}
	return scores
}

// scoreGroup adds the scores of the genes placed within one TAD.
func (e *Evaluator) scoreGroup(group []placed, scores map[string]float64) {
	var enhancerScore float64
	for _, p := range group {
		if p.kind == enhancerFeature {
			enhancerScore += e.enhancers.Impact(p.enhancer) * e.enhancerRelevance.EnhancerRelevance(p.enhancer.Source)
		}
	}

	for _, p := range group {
		if p.kind != geneFeature {
			continue
		}
		geneImpact := e.genes.Impact(p.gene)
		if geneImpact < CloseToZero {
			e.logger.Debug("gene lost on alternate allele", zap.String("gene", p.gene.Source.ID))
			continue
		}
		// A gene duplicated as a whole is scored once per copy.
		scores[p.gene.Source.ID] += geneImpact*math.Exp(e.geneWeights.GeneRelevance(p.gene.Source)) + enhancerScore
	}
}
