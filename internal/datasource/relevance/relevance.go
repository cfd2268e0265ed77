// Package relevance provides phenotype relevance tables that weigh genes and
// enhancers during prioritization.
package relevance

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/monarch-initiative/svanna-go/internal/cache"
)

// GeneWeights maps gene IDs and symbols to a relevance in [0, 1].
type GeneWeights struct {
	byID     map[string]float64
	bySymbol map[string]float64
}

// NewGeneWeights creates weights keyed by gene ID. Values are clipped to [0, 1].
func NewGeneWeights(byID map[string]float64) *GeneWeights {
	w := &GeneWeights{byID: make(map[string]float64, len(byID)), bySymbol: map[string]float64{}}
	for id, v := range byID {
		w.byID[id] = clip(v)
	}
	return w
}

// Len returns the number of weighted gene IDs.
func (w *GeneWeights) Len() int {
	return len(w.byID)
}

// GeneRelevance returns the weight of the gene, looked up by ID and then by
// symbol. Unknown genes weigh 0.
func (w *GeneWeights) GeneRelevance(g *cache.Gene) float64 {
	if v, ok := w.byID[g.ID]; ok {
		return v
	}
	return w.bySymbol[g.Symbol]
}

func clip(v float64) float64 {
	return min(max(v, 0), 1)
}

// LoadGeneWeights loads a gene weight TSV. The header must name the columns
// "gene_id" and "relevance"; a "symbol" column is optional.
func LoadGeneWeights(path string) (*GeneWeights, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gene weights: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	// Read header to find column indices
	if !scanner.Scan() {
		return nil, fmt.Errorf("gene weights: empty file")
	}
	header := strings.Split(strings.TrimPrefix(scanner.Text(), "#"), "\t")

	idIdx, symbolIdx, relIdx := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "gene_id":
			idIdx = i
		case "symbol":
			symbolIdx = i
		case "relevance":
			relIdx = i
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("gene weights: missing 'gene_id' column")
	}
	if relIdx < 0 {
		return nil, fmt.Errorf("gene weights: missing 'relevance' column")
	}

	w := NewGeneWeights(nil)
	lineNum := 1
	for scanner.Scan() {
		lineNum++
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) <= idIdx || len(fields) <= relIdx {
			continue
		}
		id := strings.TrimSpace(fields[idIdx])
		if id == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[relIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("gene weights line %d: parse relevance: %w", lineNum, err)
		}
		w.byID[id] = clip(v)
		if symbolIdx >= 0 && symbolIdx < len(fields) {
			if sym := strings.TrimSpace(fields[symbolIdx]); sym != "" {
				w.bySymbol[sym] = clip(v)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading gene weights: %w", err)
	}

	return w, nil
}

// TissueTerms is the set of tissue ontology terms relevant to the phenotype.
type TissueTerms map[string]struct{}

// EnhancerRelevance returns the highest specificity of the enhancer in a
// relevant tissue, or 0.
func (t TissueTerms) EnhancerRelevance(e *cache.Enhancer) float64 {
	var best float64
	for _, ts := range e.Tissues {
		if _, ok := t[ts.TermID]; ok {
			best = max(best, clip(ts.Specificity))
		}
	}
	return best
}

// LoadTissueTerms loads term IDs, one per line. Blank lines and lines
// starting with '#' are ignored.
func LoadTissueTerms(path string) (TissueTerms, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tissue terms: %w", err)
	}
	defer f.Close()

	terms := make(TissueTerms)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		// Allow an optional label after the term ID.
		if i := strings.IndexByte(line, '\t'); i >= 0 {
			line = line[:i]
		}
		terms[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading tissue terms: %w", err)
	}
	return terms, nil
}
