// Package cache provides the in-memory genomic landscape: genes, enhancers and
// TAD boundaries indexed for overlap queries.
package cache

import "github.com/monarch-initiative/svanna-go/internal/genome"

// Gene is a gene with its transcripts. The region is expressed on the gene strand.
type Gene struct {
	ID          string        // Gene identifier (e.g., ENSG00000133703)
	Symbol      string        // Gene symbol (e.g., KRAS)
	Biotype     string        // Gene biotype (e.g., protein_coding)
	Region      genome.Region // Zero-based, on the gene strand
	Transcripts []*Transcript
}

// Location returns the gene region.
func (g *Gene) Location() genome.Region {
	return g.Region
}
