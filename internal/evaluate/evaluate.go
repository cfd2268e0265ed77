// Package evaluate compares the reference landscape of a structural variant
// with its alternate alleles and turns the difference into a priority score.
package evaluate

import (
	"errors"

	"github.com/monarch-initiative/svanna-go/internal/cache"
)

// CloseToZero is the gene impact below which a gene is considered lost.
const CloseToZero = 1e-9

// ErrEvaluation is returned when routes were assembled but cannot be scored.
var ErrEvaluation = errors.New("evaluation failed")

// GeneWeightCalculator weighs a gene by its phenotype relevance in [0, 1].
type GeneWeightCalculator interface {
	GeneRelevance(g *cache.Gene) float64
}

// EnhancerGeneRelevanceCalculator weighs an enhancer by its phenotype relevance in [0, 1].
type EnhancerGeneRelevanceCalculator interface {
	EnhancerRelevance(e *cache.Enhancer) float64
}
