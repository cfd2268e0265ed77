package prioritize

import (
	"errors"

	"go.uber.org/zap"

	"github.com/monarch-initiative/svanna-go/internal/dispatch"
	"github.com/monarch-initiative/svanna-go/internal/evaluate"
	"github.com/monarch-initiative/svanna-go/internal/sv"
)

// Prioritizer computes the priority of a variant. Implementations are safe
// for concurrent use.
type Prioritizer interface {
	Prioritize(v *sv.Variant) SvPriority
}

// pipeline routes a variant and fetches the features around it.
type pipeline struct {
	dispatcher dispatch.Dispatcher
	data       evaluate.DataService
	evaluator  *evaluate.Evaluator
	logger     *zap.Logger
}

func (p *pipeline) routeData(v *sv.Variant) (evaluate.RouteData, error) {
	routes, err := p.dispatcher.AssembleRoutes([]*sv.Variant{v})
	if err != nil {
		return evaluate.RouteData{}, err
	}
	return p.data.RouteData(routes), nil
}

// unknown logs why v could not be evaluated and returns an unknown priority.
func (p *pipeline) unknown(v *sv.Variant, err error) SvPriority {
	fields := []zap.Field{zap.String("variant", v.ID), zap.Error(err)}
	switch {
	case errors.Is(err, dispatch.ErrIntrachromosomalBreakend):
		p.logger.Debug("unable to create the annotation route", fields...)
	case errors.Is(err, dispatch.ErrDispatch):
		p.logger.Warn("unable to create the annotation route", fields...)
	case errors.Is(err, evaluate.ErrEvaluation):
		p.logger.Warn("error during evaluation", fields...)
	default:
		p.logger.Error("unexpected prioritization failure", fields...)
	}
	return Unknown()
}

// AdditivePrioritizer scores a variant by the total change of the gene
// scores between the reference and the alternate alleles.
type AdditivePrioritizer struct {
	pipeline
}

// NewAdditivePrioritizer creates an additive prioritizer.
func NewAdditivePrioritizer(d dispatch.Dispatcher, data evaluate.DataService, e *evaluate.Evaluator) *AdditivePrioritizer {
	return &AdditivePrioritizer{pipeline{dispatcher: d, data: data, evaluator: e, logger: zap.NewNop()}}
}

// SetLogger sets the logger.
func (p *AdditivePrioritizer) SetLogger(logger *zap.Logger) {
	p.logger = logger
}

// Prioritize implements Prioritizer.
func (p *AdditivePrioritizer) Prioritize(v *sv.Variant) SvPriority {
	data, err := p.routeData(v)
	if err != nil {
		return p.unknown(v, err)
	}
	score, err := p.evaluator.Evaluate(data)
	if err != nil {
		return p.unknown(v, err)
	}
	return Of(score)
}

// GranularPrioritizer scores every gene around a variant separately.
type GranularPrioritizer struct {
	pipeline
}

// NewGranularPrioritizer creates a granular prioritizer.
func NewGranularPrioritizer(d dispatch.Dispatcher, data evaluate.DataService, e *evaluate.Evaluator) *GranularPrioritizer {
	return &GranularPrioritizer{pipeline{dispatcher: d, data: data, evaluator: e, logger: zap.NewNop()}}
}

// SetLogger sets the logger.
func (p *GranularPrioritizer) SetLogger(logger *zap.Logger) {
	p.logger = logger
}

// Prioritize implements Prioritizer.
func (p *GranularPrioritizer) Prioritize(v *sv.Variant) SvPriority {
	data, err := p.routeData(v)
	if err != nil {
		return p.unknown(v, err)
	}
	scores, err := p.evaluator.EvaluateGranular(data)
	if err != nil {
		return p.unknown(v, err)
	}
	return Granular(scores)
}
