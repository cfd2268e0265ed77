package dispatch

import (
	"go.uber.org/zap"

	"github.com/monarch-initiative/svanna-go/internal/cache"
	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/monarch-initiative/svanna-go/internal/route"
	"github.com/monarch-initiative/svanna-go/internal/sv"
)

// Dispatcher assembles the reference regions and alternate routes of variants.
type Dispatcher interface {
	AssembleRoutes(variants []*sv.Variant) (route.Routes, error)
}

// GeneLookup finds genes overlapping a region.
type GeneLookup interface {
	OverlappingGenes(q genome.Region) []*cache.Gene
}

// TadLookup finds the nearest stable TAD boundaries around a region.
type TadLookup interface {
	UpstreamBoundary(q genome.Region) (*cache.TadBoundary, bool)
	DownstreamBoundary(q genome.Region) (*cache.TadBoundary, bool)
}

// Options configures dispatching.
type Options struct {
	// ForceTadEvaluation always delimits the window with TAD boundaries, even
	// when the variant lies within a single gene.
	ForceTadEvaluation bool
}

// TadAwareDispatcher delimits the reference window by the genes overlapping the
// variant, or by the nearest stable TAD boundaries around it.
type TadAwareDispatcher struct {
	genes  GeneLookup
	tads   TadLookup
	opts   Options
	logger *zap.Logger
}

// NewTadAwareDispatcher creates a dispatcher.
func NewTadAwareDispatcher(genes GeneLookup, tads TadLookup, opts Options) *TadAwareDispatcher {
	return &TadAwareDispatcher{genes: genes, tads: tads, opts: opts, logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (d *TadAwareDispatcher) SetLogger(logger *zap.Logger) {
	d.logger = logger
}

// AssembleRoutes implements Dispatcher.
func (d *TadAwareDispatcher) AssembleRoutes(variants []*sv.Variant) (route.Routes, error) {
	arrangement, err := Arrange(variants)
	if err != nil {
		return route.Routes{}, err
	}
	if arrangement.HasBreakend() {
		return d.interchromosomal(arrangement.Variants[arrangement.BreakendIndex])
	}
	return d.intrachromosomal(arrangement.Variants)
}

func (d *TadAwareDispatcher) interchromosomal(bv *sv.Variant) (route.Routes, error) {
	left, right := bv.Left, bv.Right
	leftRef := left.Region.WithCoordinateSystem(genome.ZeroBased)
	if genes := d.genes.OverlappingGenes(left.Region); len(genes) > 0 {
		start, end := extent(genes, left.Strand)
		leftRef = genome.NewRegion(left.Contig, left.Strand, start, end)
	}
	rightRef := right.Region.WithCoordinateSystem(genome.ZeroBased)
	if genes := d.genes.OverlappingGenes(right.Region); len(genes) > 0 {
		start, end := extent(genes, right.Strand)
		rightRef = genome.NewRegion(right.Contig, right.Strand, start, end)
	}

	alternates, err := BreakendRoutes(bv, leftRef, rightRef)
	if err != nil {
		return route.Routes{}, err
	}
	return route.Routes{
		References: []genome.Region{leftRef, rightRef},
		Alternates: alternates,
	}, nil
}

func (d *TadAwareDispatcher) intrachromosomal(variants []*sv.Variant) (route.Routes, error) {
	first, last := variants[0], variants[len(variants)-1]

	upstream, downstream := -1, -1
	if !d.opts.ForceTadEvaluation && len(variants) == 1 {
		// A variant within a gene or a cluster of mutually overlapping genes
		// is evaluated within the gene bounds.
		genes := d.genes.OverlappingGenes(first.Region)
		if allGenesOverlap(genes) {
			start, end := extent(genes, first.Strand)
			upstream = min(start, first.StartWith(genome.ZeroBased))
			downstream = max(end, first.End)
		}
	}
	if upstream < 0 || downstream < 0 {
		if first.Strand != last.Strand {
			return route.Routes{}, dispatchErrorf("first and last variants must be on the same strand")
		}
		upstream = d.upstreamBound(first.Region)
		downstream = d.downstreamBound(last.Region)
		d.logger.Debug("using TAD window",
			zap.String("variant", first.ID),
			zap.Int("upstream", upstream),
			zap.Int("downstream", downstream))
	}

	reference := genome.NewRegion(first.Contig, first.Strand, upstream, downstream)
	alternate, err := BuildRoute(upstream, downstream, variants)
	if err != nil {
		return route.Routes{}, err
	}
	return route.Routes{
		References: []genome.Region{reference},
		Alternates: []*route.Route{alternate},
	}, nil
}

// upstreamBound returns the midpoint of the nearest upstream boundary, or the
// contig start.
func (d *TadAwareDispatcher) upstreamBound(q genome.Region) int {
	if b, ok := d.tads.UpstreamBoundary(q); ok {
		return b.Midpoint().WithStrand(q.Strand).Start
	}
	return 0
}

// downstreamBound returns the position before the midpoint end of the nearest
// downstream boundary, or the contig end. The boundary itself stays outside
// the window.
func (d *TadAwareDispatcher) downstreamBound(q genome.Region) int {
	if b, ok := d.tads.DownstreamBoundary(q); ok {
		return b.Midpoint().WithStrand(q.Strand).End - 1
	}
	return q.Contig.Length
}

func allGenesOverlap(genes []*cache.Gene) bool {
	if len(genes) == 0 {
		return false
	}
	for i, g := range genes {
		for _, other := range genes[i+1:] {
			if !g.Region.Overlaps(other.Region) {
				return false
			}
		}
	}
	return true
}

// extent returns the zero-based span of genes on strand.
func extent(genes []*cache.Gene, strand genome.Strand) (int, int) {
	start, end := -1, -1
	for _, g := range genes {
		r := g.Region.WithStrand(strand).WithCoordinateSystem(genome.ZeroBased)
		if start < 0 || r.Start < start {
			start = r.Start
		}
		end = max(end, r.End)
	}
	return start, end
}
