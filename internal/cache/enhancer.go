package cache

import "github.com/monarch-initiative/svanna-go/internal/genome"

// TissueSpecificity is the activity of an enhancer in a tissue, identified by
// an ontology term.
type TissueSpecificity struct {
	TermID      string  // e.g. UBERON:0002107
	Label       string  // e.g. liver
	Specificity float64 // [0, 1]
}

// Enhancer is a regulatory element active in a set of tissues.
type Enhancer struct {
	ID            string
	Region        genome.Region
	Developmental bool
	Tissues       []TissueSpecificity
}

// Location returns the enhancer region.
func (e *Enhancer) Location() genome.Region {
	return e.Region
}

// TadBoundary is a topologically associating domain boundary. Stability is the
// fraction (in percent) of cell types where the boundary was observed.
type TadBoundary struct {
	ID        string
	Region    genome.Region
	Stability float64
}

// Location returns the boundary region.
func (b *TadBoundary) Location() genome.Region {
	return b.Region
}

// Midpoint returns the single-base region at the middle of the boundary.
func (b *TadBoundary) Midpoint() genome.Region {
	return b.Region.Midpoint()
}
