// Package impact scores how intact a feature remains after it has been
// projected onto an alternate allele route. Scores range from 0 (destroyed)
// through the calculator baseline (intact) to twice the baseline (duplicated).
package impact

import (
	"go.uber.org/zap"

	"github.com/monarch-initiative/svanna-go/internal/projection"
	"github.com/monarch-initiative/svanna-go/internal/route"
)

// Calculator scores projections of features of type T.
type Calculator[T projection.Located] interface {
	// Impact returns the score of a projection.
	Impact(p projection.Projection[T]) float64
	// NoImpact returns the score of an intact feature.
	NoImpact() float64
}

// Fitness returns the fitness of sequence affected by event, scaled by factor.
func Fitness(event route.Event, factor float64) float64 {
	switch event {
	case route.Gap:
		return factor
	case route.SNV:
		return .85 * factor
	case route.Duplication:
		return .3 * factor
	case route.Insertion, route.Deletion:
		return .1 * factor
	case route.Inversion, route.Breakend:
		return 0
	default:
		return factor
	}
}

// intraSegmentImpact scores a feature lying entirely within one segment.
func intraSegmentImpact(logger *zap.Logger, kind string, event route.Event, noImpact float64) float64 {
	switch event {
	case route.Deletion:
		return 0
	case route.Duplication:
		return 2 * noImpact
	case route.Gap, route.Inversion:
		// An inverted feature is intact, only reoriented.
		return noImpact
	case route.SNV, route.Insertion, route.Breakend:
		logger.Warn("feature unexpectedly located within a zero-length event",
			zap.String("feature", kind),
			zap.Stringer("event", event))
		return noImpact
	default:
		logger.Warn("unable to score unknown event",
			zap.String("feature", kind),
			zap.Stringer("event", event))
		return noImpact
	}
}
