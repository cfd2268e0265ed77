package vcf

import (
	"strconv"
	"strings"
)

// Record represents a single VCF data line.
type Record struct {
	Chrom  string            // Chromosome name (e.g., "12", "chr12")
	Pos    int               // 1-based genomic position
	ID     string            // Record identifier
	Ref    string            // Reference allele
	Alt    string            // Alternate allele(s), comma-separated
	Qual   float64           // Quality score
	Filter string            // Filter status (PASS or filter name)
	Info   map[string]string // INFO key-value pairs; flags map to ""
	Line   int               // Line number in the source file

	RawInfo       string // INFO column as read
	SampleColumns string // FORMAT and sample columns, tab-joined; empty when absent
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (r *Record) NormalizeChrom() string {
	if len(r.Chrom) > 3 && r.Chrom[:3] == "chr" {
		return r.Chrom[3:]
	}
	return r.Chrom
}

// HasInfo reports whether the INFO field carries key.
func (r *Record) HasInfo(key string) bool {
	_, ok := r.Info[key]
	return ok
}

// InfoInt returns the first integer value of key.
func (r *Record) InfoInt(key string) (int, bool, error) {
	s, ok := r.Info[key]
	if !ok || s == "" {
		return 0, false, nil
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, err
	}
	return v, true, nil
}

// IsSymbolic returns true for symbolic alleles such as <DEL>.
func (r *Record) IsSymbolic() bool {
	return strings.HasPrefix(r.Alt, "<") && strings.HasSuffix(r.Alt, ">")
}

// IsBreakendAlt returns true when the ALT uses breakend bracket notation.
func (r *Record) IsBreakendAlt() bool {
	return strings.ContainsAny(r.Alt, "[]")
}

// DisplayID returns the record ID, or chrom:pos when the ID is missing.
func (r *Record) DisplayID() string {
	if r.ID != "" && r.ID != "." {
		return r.ID
	}
	return r.Chrom + ":" + strconv.Itoa(r.Pos)
}
