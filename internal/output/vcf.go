package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/monarch-initiative/svanna-go/internal/prioritize"
	"github.com/monarch-initiative/svanna-go/internal/vcf"
)

// INFO keys added to prioritized records.
const (
	InfoPriority = "SVANNA"
	InfoGenes    = "SVANNA_GENES"
)

var infoHeaderLines = []string{
	`##INFO=<ID=SVANNA,Number=1,Type=Float,Description="Structural variant priority from svanna">`,
	`##INFO=<ID=SVANNA_GENES,Number=.,Type=String,Description="Per-gene priorities from svanna. Format: gene_id|score">`,
}

// VCFWriter writes prioritized records in VCF format with the priority in
// the INFO column.
type VCFWriter struct {
	w           *bufio.Writer
	headerLines []string // original VCF header lines (## and #CHROM)
}

// NewVCFWriter creates a new VCF output writer.
func NewVCFWriter(w io.Writer, headerLines []string) *VCFWriter {
	return &VCFWriter{
		w:           bufio.NewWriter(w),
		headerLines: headerLines,
	}
}

// WriteHeader writes the original VCF header lines with the svanna INFO
// lines inserted before #CHROM. Existing svanna INFO lines are replaced.
func (vw *VCFWriter) WriteHeader() error {
	for _, line := range vw.headerLines {
		if strings.HasPrefix(line, "##INFO=<ID=SVANNA,") || strings.HasPrefix(line, "##INFO=<ID=SVANNA_GENES,") {
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			for _, info := range infoHeaderLines {
				if _, err := vw.w.WriteString(info + "\n"); err != nil {
					return err
				}
			}
		}
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Write writes rec with its priority. Unknown priorities leave the INFO
// column without svanna fields.
func (vw *VCFWriter) Write(rec *vcf.Record, p prioritize.SvPriority) error {
	info := stripInfo(rec.RawInfo)

	var extra []string
	if p.Known {
		extra = append(extra, InfoPriority+"="+formatScore(p.Score))
		if len(p.GeneScores) > 0 {
			extra = append(extra, InfoGenes+"="+formatGenes(p.GeneScores, '|'))
		}
	}
	if len(extra) > 0 {
		if info == "." {
			info = strings.Join(extra, ";")
		} else {
			info += ";" + strings.Join(extra, ";")
		}
	}

	var lb strings.Builder
	lb.Grow(256)
	lb.WriteString(rec.Chrom)
	lb.WriteByte('\t')
	lb.WriteString(strconv.Itoa(rec.Pos))
	lb.WriteByte('\t')
	lb.WriteString(rec.ID)
	lb.WriteByte('\t')
	lb.WriteString(rec.Ref)
	lb.WriteByte('\t')
	lb.WriteString(rec.Alt)
	lb.WriteByte('\t')
	if rec.Qual != 0 {
		lb.WriteString(strconv.FormatFloat(rec.Qual, 'g', -1, 64))
	} else {
		lb.WriteByte('.')
	}
	lb.WriteByte('\t')
	lb.WriteString(rec.Filter)
	lb.WriteByte('\t')
	lb.WriteString(info)
	if rec.SampleColumns != "" {
		lb.WriteByte('\t')
		lb.WriteString(rec.SampleColumns)
	}
	lb.WriteByte('\n')

	_, err := vw.w.WriteString(lb.String())
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (vw *VCFWriter) Flush() error {
	return vw.w.Flush()
}

// stripInfo removes svanna fields from a raw INFO string.
func stripInfo(rawInfo string) string {
	if rawInfo == "" || rawInfo == "." {
		return "."
	}

	// Fast path: no svanna field present
	if !strings.Contains(rawInfo, InfoPriority) {
		return rawInfo
	}

	var b strings.Builder
	for _, field := range strings.Split(rawInfo, ";") {
		key, _, _ := strings.Cut(field, "=")
		if key == InfoPriority || key == InfoGenes {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(field)
	}

	if b.Len() == 0 {
		return "."
	}
	return b.String()
}
