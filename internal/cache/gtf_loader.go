package cache

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/monarch-initiative/svanna-go/internal/genome"
)

// GTFLoader loads genes and transcripts from GENCODE/Ensembl GTF files.
type GTFLoader struct {
	path     string
	assembly *genome.Assembly
	logger   *zap.Logger
}

// NewGTFLoader creates a new GTF loader resolving contigs against assembly.
func NewGTFLoader(path string, assembly *genome.Assembly) *GTFLoader {
	return &GTFLoader{path: path, assembly: assembly, logger: zap.NewNop()}
}

// SetLogger sets the logger for reporting skipped records.
func (l *GTFLoader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Load parses the GTF file and returns genes ordered by contig and start.
func (l *GTFLoader) Load() ([]*Gene, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open GTF file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	// Handle gzipped files
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return l.parseGTF(reader)
}

// gtfFeature represents a parsed GTF line.
type gtfFeature struct {
	chrom       string
	featureType string
	start       int // 1-based
	end         int // 1-based, inclusive
	strand      genome.Strand
	attributes  map[string]string
}

type transcriptBuilder struct {
	tx     *Transcript
	exons  []genome.Region // positive strand
	cdsMin int
	cdsMax int
}

// parseGTF parses GTF content and assembles genes.
func (l *GTFLoader) parseGTF(reader io.Reader) ([]*Gene, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	genes := make(map[string]*Gene)
	builders := make(map[string]*transcriptBuilder)
	var txOrder []string
	skippedContigs := make(map[string]int)

	for scanner.Scan() {
		line := scanner.Text()

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		feat, err := l.parseLine(line)
		if err != nil {
			continue // Skip malformed lines
		}

		contig, ok := l.assembly.Contig(feat.chrom)
		if !ok {
			skippedContigs[feat.chrom]++
			continue
		}
		// Positive-strand zero-based region of the feature.
		pos := genome.NewRegion(contig, genome.Positive, feat.start-1, feat.end)
		geneID := stripVersion(feat.attributes["gene_id"])

		switch feat.featureType {
		case "gene":
			g := genes[geneID]
			if g == nil {
				g = &Gene{ID: geneID}
				genes[geneID] = g
			}
			g.Symbol = feat.attributes["gene_name"]
			g.Biotype = geneType(feat.attributes)
			g.Region = pos.WithStrand(feat.strand)

		case "transcript":
			txID := stripVersion(feat.attributes["transcript_id"])
			if txID == "" {
				continue
			}
			tags := feat.attributes["tag"]
			builders[txID] = &transcriptBuilder{tx: &Transcript{
				ID:           txID,
				GeneID:       geneID,
				Biotype:      transcriptType(feat.attributes),
				Region:       pos.WithStrand(feat.strand),
				IsCanonical:  strings.Contains(tags, "Ensembl_canonical"),
				IsMANESelect: strings.Contains(tags, "MANE_Select"),
			}}
			txOrder = append(txOrder, txID)
			if _, ok := genes[geneID]; !ok {
				genes[geneID] = &Gene{ID: geneID, Symbol: feat.attributes["gene_name"], Biotype: geneType(feat.attributes)}
			}

		case "exon":
			if b := builders[stripVersion(feat.attributes["transcript_id"])]; b != nil {
				b.exons = append(b.exons, pos)
			}

		case "CDS", "start_codon", "stop_codon":
			if b := builders[stripVersion(feat.attributes["transcript_id"])]; b != nil {
				if b.cdsMax == 0 || pos.Start < b.cdsMin {
					b.cdsMin = pos.Start
				}
				b.cdsMax = max(b.cdsMax, pos.End)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GTF: %w", err)
	}
	for chrom, n := range skippedContigs {
		l.logger.Debug("skipped records on unknown contig", zap.String("contig", chrom), zap.Int("records", n))
	}

	// Assemble transcripts with exons and CDS info
	for _, id := range txOrder {
		b := builders[id]
		if len(b.exons) == 0 {
			continue
		}
		t := b.tx
		strand := t.Region.Strand

		exons := make([]genome.Region, len(b.exons))
		for i, e := range b.exons {
			exons[i] = e.WithStrand(strand)
		}
		// Sort exons 5' to 3' on the transcript strand
		sort.Slice(exons, func(i, j int) bool {
			return exons[i].Start < exons[j].Start
		})
		t.Exons = exons

		if b.cdsMax > 0 {
			cds := genome.NewRegion(t.Region.Contig, genome.Positive, b.cdsMin, b.cdsMax).WithStrand(strand)
			t.CDSStart, t.CDSEnd = cds.Start, cds.End
		}

		g := genes[t.GeneID]
		g.Transcripts = append(g.Transcripts, t)
		if g.Region.Contig == nil {
			g.Region = t.Region
		} else {
			g.Region = extend(g.Region, t.Region)
		}
	}

	out := make([]*Gene, 0, len(genes))
	for _, g := range genes {
		if g.Region.Contig == nil {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := positive(out[i].Region), positive(out[j].Region)
		if ri.Contig.ID != rj.Contig.ID {
			return ri.Contig.ID < rj.Contig.ID
		}
		if ri.Start != rj.Start {
			return ri.Start < rj.Start
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// extend grows r to also cover o. The result keeps the strand of r.
func extend(r, o genome.Region) genome.Region {
	o = o.WithStrand(r.Strand)
	r.Start = min(r.Start, o.Start)
	r.End = max(r.End, o.End)
	return r
}

// parseLine parses a single GTF line.
func (l *GTFLoader) parseLine(line string) (*gtfFeature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return nil, fmt.Errorf("invalid GTF line: expected 9 fields, got %d", len(fields))
	}

	start, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}

	end, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}

	return &gtfFeature{
		chrom:       fields[0],
		featureType: fields[2],
		start:       start,
		end:         end,
		strand:      genome.ParseStrand(fields[6]),
		attributes:  parseAttributes(fields[8]),
	}, nil
}

// parseAttributes parses GTF attribute column.
// Format: key "value"; key "value"; ...
// Repeated keys (e.g. tag) are joined with a comma.
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		// Find the first space to separate key from value
		idx := strings.Index(part, " ")
		if idx == -1 {
			continue
		}

		key := part[:idx]
		value := strings.Trim(strings.TrimSpace(part[idx+1:]), "\"")

		if prev, ok := attrs[key]; ok {
			attrs[key] = prev + "," + value
		} else {
			attrs[key] = value
		}
	}

	return attrs
}

// GENCODE uses gene_type, Ensembl uses gene_biotype.
func geneType(attrs map[string]string) string {
	if t := attrs["gene_type"]; t != "" {
		return t
	}
	return attrs["gene_biotype"]
}

func transcriptType(attrs map[string]string) string {
	if t := attrs["transcript_type"]; t != "" {
		return t
	}
	return attrs["transcript_biotype"]
}

// stripVersion removes the version suffix from an Ensembl ID.
// e.g., "ENST00000456328.2" -> "ENST00000456328"
func stripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}
