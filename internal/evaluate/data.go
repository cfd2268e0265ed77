package evaluate

import (
	"github.com/monarch-initiative/svanna-go/internal/cache"
	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/monarch-initiative/svanna-go/internal/route"
)

// RouteData bundles the routes of a variant with the features located in
// its reference regions. The alternate routes are assembled from pieces of
// the references, so the same features are projected onto them.
type RouteData struct {
	Routes        route.Routes
	Genes         []*cache.Gene
	Enhancers     []*cache.Enhancer
	TadBoundaries []*cache.TadBoundary
}

// DataService fetches the features needed to evaluate routes.
type DataService interface {
	RouteData(routes route.Routes) RouteData
}

// Landscape finds features contained in a region.
type Landscape interface {
	GenesIn(q genome.Region) []*cache.Gene
	EnhancersIn(q genome.Region) []*cache.Enhancer
	TadBoundariesIn(q genome.Region) []*cache.TadBoundary
}

// FeatureDataService is a DataService backed by a Landscape.
type FeatureDataService struct {
	landscape Landscape
}

// NewFeatureDataService creates a data service reading from landscape.
func NewFeatureDataService(landscape Landscape) *FeatureDataService {
	return &FeatureDataService{landscape: landscape}
}

// RouteData implements DataService. TAD boundaries that overlap a gene are
// dropped as they cannot separate the gene from its enhancers.
func (s *FeatureDataService) RouteData(routes route.Routes) RouteData {
	data := RouteData{Routes: routes}
	for _, ref := range routes.References {
		genes := s.landscape.GenesIn(ref)
		data.Genes = append(data.Genes, genes...)
		data.Enhancers = append(data.Enhancers, s.landscape.EnhancersIn(ref)...)
		for _, b := range s.landscape.TadBoundariesIn(ref) {
			if !overlapsAny(b.Region, genes) {
				data.TadBoundaries = append(data.TadBoundaries, b)
			}
		}
	}
	return data
}

func overlapsAny(r genome.Region, genes []*cache.Gene) bool {
	for _, g := range genes {
		if g.Region.Overlaps(r) {
			return true
		}
	}
	return false
}
