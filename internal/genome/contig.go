// Package genome provides contigs, strands and stranded genomic regions.
package genome

import (
	"fmt"
	"strings"
)

// Contig is a named reference sequence.
type Contig struct {
	ID     int    // Rank within the assembly (1-based), 0 for synthetic contigs
	Name   string // Primary name without "chr" prefix (e.g. "1", "X", "MT")
	Length int    // Number of bases
}

// NewSyntheticContig creates a contig that is not part of any assembly.
func NewSyntheticContig(name string, length int) *Contig {
	return &Contig{Name: name, Length: length}
}

// SameContig reports whether a and b denote the same contig.
func SameContig(a, b *Contig) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.ID == b.ID && a.Name == b.Name
}

func (c *Contig) String() string {
	return c.Name
}

// Assembly maps contig names to contigs.
type Assembly struct {
	name    string
	contigs []*Contig
	byName  map[string]*Contig
}

// NewAssembly creates an assembly from contigs ordered by rank.
func NewAssembly(name string, contigs []*Contig) *Assembly {
	a := &Assembly{
		name:    name,
		contigs: contigs,
		byName:  make(map[string]*Contig, len(contigs)),
	}
	for _, c := range contigs {
		a.byName[NormalizeChrom(c.Name)] = c
	}
	return a
}

// Name returns the assembly name (e.g. GRCh38).
func (a *Assembly) Name() string {
	return a.name
}

// Contig returns the contig with the given name. Names are matched with or
// without a "chr" prefix.
func (a *Assembly) Contig(name string) (*Contig, bool) {
	c, ok := a.byName[NormalizeChrom(name)]
	return c, ok
}

// Contigs returns contigs in rank order.
func (a *Assembly) Contigs() []*Contig {
	return a.contigs
}

// NormalizeChrom removes the "chr" prefix and maps "M" to "MT".
func NormalizeChrom(name string) string {
	name = strings.TrimPrefix(name, "chr")
	if name == "M" {
		return "MT"
	}
	return name
}

// AssemblyByName returns a built-in assembly.
func AssemblyByName(name string) (*Assembly, error) {
	switch strings.ToLower(name) {
	case "grch38", "hg38":
		return GRCh38(), nil
	case "grch37", "hg19":
		return GRCh37(), nil
	default:
		return nil, fmt.Errorf("unknown assembly %q (supported: GRCh37, GRCh38)", name)
	}
}
