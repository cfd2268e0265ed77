package impact

import (
	"go.uber.org/zap"

	"github.com/monarch-initiative/svanna-go/internal/cache"
	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/monarch-initiative/svanna-go/internal/projection"
	"github.com/monarch-initiative/svanna-go/internal/route"
)

const (
	intronicAcceptorPadding = 25
	intronicDonorPadding    = 6

	// Fitness of a coding insertion.
	insertionInFrame     = .8 // At a codon boundary and a multiple of three
	insertionOutOfFrame  = .5 // At a codon boundary, shifts the downstream codons
	insertionShiftsFrame = .1 // Lands within a codon
)

// GeneOptions configures a GeneCalculator.
type GeneOptions struct {
	Factor              float64 // Score of an intact gene
	PromoterLength      int     // Bases upstream of each transcript start
	PromoterFitnessGain float64 // Added to the fitness of a disrupted promoter, [0, 1]
}

// DefaultGeneOptions returns the default gene scoring options.
func DefaultGeneOptions() GeneOptions {
	return GeneOptions{Factor: 1, PromoterLength: 500}
}

// GeneCalculator scores gene projections by checking whether the events of
// the route hit the promoters or the padded exons of the gene transcripts.
type GeneCalculator struct {
	opts   GeneOptions
	logger *zap.Logger
}

var _ Calculator[*cache.Gene] = (*GeneCalculator)(nil)

// NewGeneCalculator creates a gene calculator.
func NewGeneCalculator(opts GeneOptions) *GeneCalculator {
	opts.PromoterFitnessGain = min(max(opts.PromoterFitnessGain, 0), 1)
	return &GeneCalculator{opts: opts, logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (c *GeneCalculator) SetLogger(logger *zap.Logger) {
	c.logger = logger
}

// NoImpact implements Calculator.
func (c *GeneCalculator) NoImpact() float64 {
	return c.opts.Factor
}

// Impact implements Calculator.
func (c *GeneCalculator) Impact(p projection.Projection[*cache.Gene]) float64 {
	var score float64
	if p.IsIntraSegment() {
		score = intraSegmentImpact(c.logger, "gene", p.StartLocation.Event, c.NoImpact())
	} else {
		score = c.interSegmentImpact(p)
	}

	if promoter, ok := c.promoterImpact(p.Route.Segments(), p.Source); ok {
		score = min(score, promoter)
	}
	return score
}

// promoterImpact returns the lowest fitness of non-gap segments overlapping a
// promoter of the gene. ok is false when no promoter is hit.
func (c *GeneCalculator) promoterImpact(segments []route.Segment, g *cache.Gene) (float64, bool) {
	if c.opts.PromoterLength <= 0 {
		return 0, false
	}

	score, ok := 0.0, false
	for _, tx := range g.Transcripts {
		promoter := promoterRegion(tx.Region, c.opts.PromoterLength)
		for _, s := range segments {
			if s.Event == route.Gap || !s.Region.Overlaps(promoter) {
				continue
			}
			// The promoter moves along with an inverted or duplicated block.
			if (s.Event == route.Inversion || s.Event == route.Duplication) && s.Region.Contains(promoter) {
				continue
			}
			fitness := Fitness(s.Event, c.opts.Factor) + c.opts.Factor*c.opts.PromoterFitnessGain
			fitness = min(fitness, 1, c.opts.Factor)
			if !ok || fitness < score {
				score, ok = fitness, true
			}
		}
	}
	return score, ok
}

// promoterRegion returns the region of length bases upstream of the transcript start.
func promoterRegion(tx genome.Region, length int) genome.Region {
	start := tx.StartWith(genome.ZeroBased)
	return genome.NewRegion(tx.Contig, tx.Strand, max(start-length, 0), start)
}

// interSegmentImpact returns the lowest fitness of the events spanned by the
// gene, scored against the coding structure of each transcript.
func (c *GeneCalculator) interSegmentImpact(p projection.Projection[*cache.Gene]) float64 {
	var causal []route.Segment
	for _, s := range p.SpannedSegments() {
		if s.Event != route.Gap {
			causal = append(causal, s)
		}
	}

	score := c.NoImpact()
	g := p.Source
	if len(g.Transcripts) == 0 {
		// Without a transcript structure the whole gene body is critical.
		for _, s := range causal {
			if s.Region.Overlaps(g.Region) {
				score = min(score, Fitness(s.Event, c.opts.Factor))
			}
		}
		return score
	}

	for _, tx := range g.Transcripts {
		score = min(score, c.transcriptImpact(causal, tx))
	}
	return score
}

// transcriptImpact scores segments against a single transcript. Non-coding
// transcripts are not evaluated.
func (c *GeneCalculator) transcriptImpact(segments []route.Segment, tx *cache.Transcript) float64 {
	score := c.NoImpact()
	if !tx.IsProteinCoding() || len(tx.Exons) == 0 {
		return score
	}

	layout := newCodingLayout(tx)
	for _, s := range segments {
		if s.Event == route.Insertion {
			score = min(score, c.insertionImpact(s, layout))
		} else {
			score = min(score, c.segmentImpact(s, layout))
		}
	}
	return score
}

// insertionImpact scores an empty insertion segment by the reading frame or the
// UTR it lands in.
func (c *GeneCalculator) insertionImpact(s route.Segment, l codingLayout) float64 {
	if s.Region.Length() != 0 {
		c.logger.Warn("insertion with non-empty reference span",
			zap.String("segment", s.ID),
			zap.Int("length", s.Region.Length()))
		return c.NoImpact()
	}

	pos := s.StartOnStrandWith(l.strand, genome.ZeroBased)
	codingBefore := 0
	for _, e := range l.exons {
		if pos < e.paddedStart || e.paddedEnd < pos {
			codingBefore += e.coding
			continue
		}
		switch {
		case pos <= l.cdsStart:
			return c.insertionUtrFitness(s.Length(), l.fiveUtrLength())
		case l.cdsEnd < pos:
			return c.insertionUtrFitness(s.Length(), l.threeUtrLength())
		}
		phase := (codingBefore + pos - max(l.cdsStart, e.start)) % 3
		switch {
		case phase == 0 && s.Length()%3 == 0:
			return insertionInFrame * c.opts.Factor
		case phase == 0:
			return insertionOutOfFrame * c.opts.Factor
		default:
			return insertionShiftsFrame * c.opts.Factor
		}
	}
	return c.NoImpact()
}

// segmentImpact scores a non-insertion segment exon by exon, keeping the most
// severe score.
func (c *GeneCalculator) segmentImpact(s route.Segment, l codingLayout) float64 {
	start := s.StartOnStrandWith(l.strand, genome.ZeroBased)
	end := s.EndOnStrandWith(l.strand, genome.ZeroBased)

	score := c.NoImpact()
	for i, e := range l.exons {
		if start >= e.paddedEnd || e.paddedStart >= end {
			continue
		}
		// Losing the transcription start is scored as a coding hit.
		if i == 0 && start <= e.start && e.start < end {
			score = min(score, Fitness(s.Event, c.opts.Factor))
			continue
		}
		switch {
		case start < l.cdsEnd && l.cdsStart < end:
			score = min(score, Fitness(s.Event, c.opts.Factor))
		case end <= l.cdsStart:
			score = min(score, c.utrFitness(end-start, l.fiveUtrLength()))
		default:
			score = min(score, c.utrFitness(end-start, l.threeUtrLength()))
		}
	}
	return score
}

// utrFitness drops linearly to 0 once half of the UTR is affected.
func (c *GeneCalculator) utrFitness(affected, utrLength int) float64 {
	if utrLength <= 0 {
		return c.NoImpact()
	}
	return max(1-2*float64(affected)/float64(utrLength), 0) * c.opts.Factor
}

func (c *GeneCalculator) insertionUtrFitness(inserted, utrLength int) float64 {
	if utrLength <= 0 {
		return c.NoImpact()
	}
	return (1 - min(float64(inserted)/float64(utrLength), 1)) * c.opts.Factor
}

// paddedExon is an exon on the transcript strand, zero-based, together with
// its splice region padding and the number of coding bases it holds.
type paddedExon struct {
	paddedStart, start, end, paddedEnd int
	coding                             int
}

// codingLayout is the exon and CDS structure of a coding transcript on its own strand.
type codingLayout struct {
	strand           genome.Strand
	txStart, txEnd   int
	cdsStart, cdsEnd int
	exons            []paddedExon
}

func (l codingLayout) fiveUtrLength() int  { return l.cdsStart - l.txStart }
func (l codingLayout) threeUtrLength() int { return l.txEnd - l.cdsEnd }

// newCodingLayout pads exons by the splice acceptor margin upstream of every
// exon but the first and the donor margin downstream of every exon but the
// last. Single-exon transcripts are not padded.
func newCodingLayout(tx *cache.Transcript) codingLayout {
	strand := tx.Region.Strand
	l := codingLayout{
		strand:   strand,
		txStart:  tx.Region.StartWith(genome.ZeroBased),
		txEnd:    tx.Region.End,
		cdsStart: tx.CDSStart,
		cdsEnd:   tx.CDSEnd,
		exons:    make([]paddedExon, len(tx.Exons)),
	}
	n := len(tx.Exons)
	for i, r := range tx.Exons {
		r = r.WithStrand(strand)
		e := paddedExon{start: r.StartWith(genome.ZeroBased), end: r.End}
		e.paddedStart, e.paddedEnd = e.start, e.end
		if i > 0 {
			e.paddedStart = max(e.start-intronicAcceptorPadding, 0)
		}
		if i < n-1 {
			e.paddedEnd = min(e.end+intronicDonorPadding, r.Contig.Length)
		}
		e.coding = max(min(e.end, l.cdsEnd)-max(e.start, l.cdsStart), 0)
		l.exons[i] = e
	}
	return l
}
