package impact

import (
	"go.uber.org/zap"

	"github.com/monarch-initiative/svanna-go/internal/cache"
	"github.com/monarch-initiative/svanna-go/internal/projection"
)

// EnhancerCalculator scores enhancer projections. Enhancers have no inner
// structure, so any event overlapping the enhancer body counts.
type EnhancerCalculator struct {
	factor float64
	logger *zap.Logger
}

var _ Calculator[*cache.Enhancer] = (*EnhancerCalculator)(nil)

// NewEnhancerCalculator creates an enhancer calculator whose baseline is factor.
func NewEnhancerCalculator(factor float64) *EnhancerCalculator {
	return &EnhancerCalculator{factor: factor, logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (c *EnhancerCalculator) SetLogger(logger *zap.Logger) {
	c.logger = logger
}

// NoImpact implements Calculator.
func (c *EnhancerCalculator) NoImpact() float64 {
	return c.factor
}

// Impact implements Calculator.
func (c *EnhancerCalculator) Impact(p projection.Projection[*cache.Enhancer]) float64 {
	if p.IsIntraSegment() {
		return intraSegmentImpact(c.logger, "enhancer", p.StartLocation.Event, c.NoImpact())
	}

	score := c.NoImpact()
	for _, s := range p.SpannedSegments() {
		if s.Region.Overlaps(p.Source.Region) {
			score = min(score, Fitness(s.Event, c.factor))
		}
	}
	return score
}
