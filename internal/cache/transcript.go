package cache

import "github.com/monarch-initiative/svanna-go/internal/genome"

// Transcript represents a specific gene isoform. All coordinates are zero-based
// and expressed on the transcript strand, so exons are ordered 5' to 3'.
type Transcript struct {
	ID           string // Transcript ID (e.g., ENST00000311936)
	GeneID       string // Parent gene ID
	Biotype      string // Transcript biotype
	Region       genome.Region
	Exons        []genome.Region // Ordered 5' to 3'
	CDSStart     int             // CDS start on the transcript strand, 0 if non-coding
	CDSEnd       int             // CDS end on the transcript strand, 0 if non-coding
	IsCanonical  bool            // Ensembl canonical flag
	IsMANESelect bool            // MANE Select transcript
}

// Location returns the transcript region.
func (t *Transcript) Location() genome.Region {
	return t.Region
}

// IsProteinCoding returns true if the transcript has a coding sequence.
func (t *Transcript) IsProteinCoding() bool {
	return t.CDSEnd > t.CDSStart
}
