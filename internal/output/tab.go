// Package output provides priority output formatters.
package output

import (
	"bufio"
	"cmp"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/monarch-initiative/svanna-go/internal/prioritize"
	"github.com/monarch-initiative/svanna-go/internal/sv"
)

// TabWriter writes variant priorities in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#ID",
			"CHROM",
			"START",
			"END",
			"SVTYPE",
			"MATE",
			"PRIORITY",
			"KNOWN",
			"GENES",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes the priority of a single variant. START is one-based and END
// inclusive, both on the positive strand.
func (tw *TabWriter) Write(v *sv.Variant, p prioritize.SvPriority) error {
	region := v.Region
	mate := "-"
	if v.IsBreakend() && v.Left != nil && v.Right != nil {
		region = v.Left.Region
		r := v.Right.Region.WithStrand(genome.Positive)
		mate = r.Contig.Name + ":" + strconv.Itoa(r.StartWith(genome.OneBased)) + v.Right.Strand.String()
	}
	region = region.WithStrand(genome.Positive)

	priority, known := "-", "NO"
	if p.Known {
		priority = formatScore(p.Score)
		known = "YES"
	}

	values := []string{
		v.ID,
		region.Contig.Name,
		strconv.Itoa(region.StartWith(genome.OneBased)),
		strconv.Itoa(region.End),
		v.Type.String(),
		mate,
		priority,
		known,
		formatGenes(p.GeneScores, '='),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'g', 6, 64)
}

// formatGenes renders gene scores as comma-separated pairs of id and score
// joined by sep, highest score first.
func formatGenes(scores map[string]float64, sep byte) string {
	if len(scores) == 0 {
		return "-"
	}
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		if c := cmp.Compare(scores[b], scores[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(id)
		sb.WriteByte(sep)
		sb.WriteString(formatScore(scores[id]))
	}
	return sb.String()
}
