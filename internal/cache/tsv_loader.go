package cache

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/monarch-initiative/svanna-go/internal/genome"
)

// LoadEnhancers loads enhancers from a TSV file with header columns chrom,
// start, end, id, developmental and tissues. Coordinates are zero-based
// half-open on the positive strand. The tissues column holds comma-separated
// TERM_ID|label|specificity triples.
func LoadEnhancers(path string, assembly *genome.Assembly) ([]*Enhancer, error) {
	rows, err := readTSV(path, "enhancer", "chrom", "start", "end", "id", "developmental", "tissues")
	if err != nil {
		return nil, err
	}

	enhancers := make([]*Enhancer, 0, len(rows))
	for _, row := range rows {
		r, ok, err := row.region(assembly)
		if err != nil {
			return nil, fmt.Errorf("enhancer line %d: %w", row.line, err)
		}
		if !ok {
			continue
		}
		tissues, err := parseTissues(row.get("tissues"))
		if err != nil {
			return nil, fmt.Errorf("enhancer line %d: %w", row.line, err)
		}
		enhancers = append(enhancers, &Enhancer{
			ID:            row.get("id"),
			Region:        r,
			Developmental: parseBool(row.get("developmental")),
			Tissues:       tissues,
		})
	}
	return enhancers, nil
}

// LoadTadBoundaries loads TAD boundaries from a TSV file with header columns
// chrom, start, end, id and stability.
func LoadTadBoundaries(path string, assembly *genome.Assembly) ([]*TadBoundary, error) {
	rows, err := readTSV(path, "TAD boundary", "chrom", "start", "end", "id", "stability")
	if err != nil {
		return nil, err
	}

	boundaries := make([]*TadBoundary, 0, len(rows))
	for _, row := range rows {
		r, ok, err := row.region(assembly)
		if err != nil {
			return nil, fmt.Errorf("TAD boundary line %d: %w", row.line, err)
		}
		if !ok {
			continue
		}
		stability, err := strconv.ParseFloat(row.get("stability"), 64)
		if err != nil {
			return nil, fmt.Errorf("TAD boundary line %d: parse stability: %w", row.line, err)
		}
		boundaries = append(boundaries, &TadBoundary{
			ID:        row.get("id"),
			Region:    r,
			Stability: stability,
		})
	}
	return boundaries, nil
}

type tsvRow struct {
	line   int
	fields []string
	index  map[string]int
}

func (r tsvRow) get(col string) string {
	i := r.index[col]
	if i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// region returns the row location. ok is false when the contig is not part of
// the assembly.
func (r tsvRow) region(assembly *genome.Assembly) (genome.Region, bool, error) {
	contig, ok := assembly.Contig(r.get("chrom"))
	if !ok {
		return genome.Region{}, false, nil
	}
	start, err := strconv.Atoi(r.get("start"))
	if err != nil {
		return genome.Region{}, false, fmt.Errorf("parse start: %w", err)
	}
	end, err := strconv.Atoi(r.get("end"))
	if err != nil {
		return genome.Region{}, false, fmt.Errorf("parse end: %w", err)
	}
	if start > end || end > contig.Length {
		return genome.Region{}, false, fmt.Errorf("invalid interval %d-%d on %s", start, end, contig.Name)
	}
	return genome.NewRegion(contig, genome.Positive, start, end), true, nil
}

// readTSV reads a headered TSV file and checks that all required columns exist.
func readTSV(path, what string, required ...string) ([]tsvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s file: %w", what, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// Read header to find column indices
	if !scanner.Scan() {
		return nil, fmt.Errorf("%s file: empty file", what)
	}
	header := strings.Split(strings.TrimPrefix(scanner.Text(), "#"), "\t")
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%s file: missing '%s' column", what, col)
		}
	}

	var rows []tsvRow
	line := 1
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		rows = append(rows, tsvRow{line: line, fields: strings.Split(text, "\t"), index: index})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s file: %w", what, err)
	}
	return rows, nil
}

func parseTissues(s string) ([]TissueSpecificity, error) {
	if s == "" || s == "." {
		return nil, nil
	}
	var out []TissueSpecificity
	for _, item := range strings.Split(s, ",") {
		parts := strings.Split(item, "|")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid tissue %q: expected TERM_ID|label|specificity", item)
		}
		spec, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse tissue specificity: %w", err)
		}
		out = append(out, TissueSpecificity{TermID: parts[0], Label: parts[1], Specificity: spec})
	}
	return out, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}
