package duckdb

import (
	"database/sql/driver"
	"fmt"
	"sort"

	"github.com/monarch-initiative/svanna-go/internal/cache"
	"github.com/monarch-initiative/svanna-go/internal/genome"
)

// Coordinates are stored zero-based on the positive strand. CDS bounds are
// stored as they appear on the transcript strand.

func positive(r genome.Region) genome.Region {
	return r.WithStrand(genome.Positive).WithCoordinateSystem(genome.ZeroBased)
}

// WriteGenes replaces all genes, transcripts and exons.
func (s *Store) WriteGenes(genes []*cache.Gene) error {
	if err := s.deleteAll("genes", "transcripts", "exons"); err != nil {
		return err
	}

	if err := s.appendRows("genes", func(appendRow func(...driver.Value) error) error {
		for _, g := range genes {
			p := positive(g.Region)
			if err := appendRow(g.ID, g.Symbol, g.Biotype, p.Contig.Name, int8(g.Region.Strand), int64(p.Start), int64(p.End)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := s.appendRows("transcripts", func(appendRow func(...driver.Value) error) error {
		for _, g := range genes {
			for _, t := range g.Transcripts {
				p := positive(t.Region)
				if err := appendRow(t.ID, g.ID, t.Biotype, p.Contig.Name, int8(t.Region.Strand),
					int64(p.Start), int64(p.End), int64(t.CDSStart), int64(t.CDSEnd),
					t.IsCanonical, t.IsMANESelect); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		return err
	}

	return s.appendRows("exons", func(appendRow func(...driver.Value) error) error {
		for _, g := range genes {
			for _, t := range g.Transcripts {
				for i, e := range t.Exons {
					p := positive(e)
					if err := appendRow(t.ID, int32(i+1), int64(p.Start), int64(p.End)); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

// WriteEnhancers replaces all enhancers and their tissue specificities.
func (s *Store) WriteEnhancers(enhancers []*cache.Enhancer) error {
	if err := s.deleteAll("enhancers", "enhancer_tissues"); err != nil {
		return err
	}

	if err := s.appendRows("enhancers", func(appendRow func(...driver.Value) error) error {
		for _, e := range enhancers {
			p := positive(e.Region)
			if err := appendRow(e.ID, p.Contig.Name, int64(p.Start), int64(p.End), e.Developmental); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	return s.appendRows("enhancer_tissues", func(appendRow func(...driver.Value) error) error {
		for _, e := range enhancers {
			for _, t := range e.Tissues {
				if err := appendRow(e.ID, t.TermID, t.Label, t.Specificity); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// WriteTadBoundaries replaces all TAD boundaries.
func (s *Store) WriteTadBoundaries(boundaries []*cache.TadBoundary) error {
	if err := s.deleteAll("tad_boundaries"); err != nil {
		return err
	}
	return s.appendRows("tad_boundaries", func(appendRow func(...driver.Value) error) error {
		for _, b := range boundaries {
			p := positive(b.Region)
			if err := appendRow(b.ID, p.Contig.Name, int64(p.Start), int64(p.End), b.Stability); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadGenes reads all genes with their transcripts and exons. Rows on contigs
// missing from assembly are skipped.
func (s *Store) LoadGenes(assembly *genome.Assembly) ([]*cache.Gene, error) {
	rows, err := s.db.Query(`SELECT gene_id, symbol, biotype, contig, strand, start_pos, end_pos
		FROM genes ORDER BY contig, start_pos, gene_id`)
	if err != nil {
		return nil, fmt.Errorf("query genes: %w", err)
	}
	defer rows.Close()

	var genes []*cache.Gene
	byID := make(map[string]*cache.Gene)
	for rows.Next() {
		var g cache.Gene
		var contig string
		var strand int8
		var start, end int
		if err := rows.Scan(&g.ID, &g.Symbol, &g.Biotype, &contig, &strand, &start, &end); err != nil {
			return nil, fmt.Errorf("scan gene: %w", err)
		}
		c, ok := assembly.Contig(contig)
		if !ok {
			continue
		}
		g.Region = genome.NewRegion(c, genome.Positive, start, end).WithStrand(genome.Strand(strand))
		genes = append(genes, &g)
		byID[g.ID] = &g
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genes: %w", err)
	}

	transcripts, err := s.loadTranscripts(assembly, byID)
	if err != nil {
		return nil, err
	}
	if err := s.loadExons(transcripts); err != nil {
		return nil, err
	}

	sort.SliceStable(genes, func(i, j int) bool {
		a, b := genes[i].Region.Contig, genes[j].Region.Contig
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return positive(genes[i].Region).Start < positive(genes[j].Region).Start
	})
	return genes, nil
}

func (s *Store) loadTranscripts(assembly *genome.Assembly, genes map[string]*cache.Gene) (map[string]*cache.Transcript, error) {
	rows, err := s.db.Query(`SELECT transcript_id, gene_id, biotype, contig, strand, start_pos, end_pos,
		cds_start, cds_end, is_canonical, is_mane_select
		FROM transcripts ORDER BY gene_id, transcript_id`)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*cache.Transcript)
	for rows.Next() {
		var t cache.Transcript
		var contig string
		var strand int8
		var start, end int
		if err := rows.Scan(&t.ID, &t.GeneID, &t.Biotype, &contig, &strand, &start, &end,
			&t.CDSStart, &t.CDSEnd, &t.IsCanonical, &t.IsMANESelect); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		g, ok := genes[t.GeneID]
		if !ok {
			continue
		}
		c, ok := assembly.Contig(contig)
		if !ok {
			continue
		}
		t.Region = genome.NewRegion(c, genome.Positive, start, end).WithStrand(genome.Strand(strand))
		g.Transcripts = append(g.Transcripts, &t)
		out[t.ID] = &t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcripts: %w", err)
	}
	return out, nil
}

func (s *Store) loadExons(transcripts map[string]*cache.Transcript) error {
	rows, err := s.db.Query(`SELECT transcript_id, start_pos, end_pos
		FROM exons ORDER BY transcript_id, exon_number`)
	if err != nil {
		return fmt.Errorf("query exons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var start, end int
		if err := rows.Scan(&id, &start, &end); err != nil {
			return fmt.Errorf("scan exon: %w", err)
		}
		t, ok := transcripts[id]
		if !ok {
			continue
		}
		e := genome.NewRegion(t.Region.Contig, genome.Positive, start, end).WithStrand(t.Region.Strand)
		t.Exons = append(t.Exons, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate exons: %w", err)
	}
	return nil
}

// LoadEnhancers reads all enhancers with their tissue specificities.
func (s *Store) LoadEnhancers(assembly *genome.Assembly) ([]*cache.Enhancer, error) {
	rows, err := s.db.Query(`SELECT enhancer_id, contig, start_pos, end_pos, developmental
		FROM enhancers ORDER BY contig, start_pos, enhancer_id`)
	if err != nil {
		return nil, fmt.Errorf("query enhancers: %w", err)
	}
	defer rows.Close()

	var enhancers []*cache.Enhancer
	byID := make(map[string]*cache.Enhancer)
	for rows.Next() {
		var e cache.Enhancer
		var contig string
		var start, end int
		if err := rows.Scan(&e.ID, &contig, &start, &end, &e.Developmental); err != nil {
			return nil, fmt.Errorf("scan enhancer: %w", err)
		}
		c, ok := assembly.Contig(contig)
		if !ok {
			continue
		}
		e.Region = genome.NewRegion(c, genome.Positive, start, end)
		enhancers = append(enhancers, &e)
		byID[e.ID] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enhancers: %w", err)
	}

	tissues, err := s.db.Query(`SELECT enhancer_id, term_id, label, specificity
		FROM enhancer_tissues ORDER BY enhancer_id, term_id`)
	if err != nil {
		return nil, fmt.Errorf("query enhancer tissues: %w", err)
	}
	defer tissues.Close()

	for tissues.Next() {
		var id string
		var t cache.TissueSpecificity
		if err := tissues.Scan(&id, &t.TermID, &t.Label, &t.Specificity); err != nil {
			return nil, fmt.Errorf("scan enhancer tissue: %w", err)
		}
		if e, ok := byID[id]; ok {
			e.Tissues = append(e.Tissues, t)
		}
	}
	if err := tissues.Err(); err != nil {
		return nil, fmt.Errorf("iterate enhancer tissues: %w", err)
	}
	return enhancers, nil
}

// LoadTadBoundaries reads all TAD boundaries.
func (s *Store) LoadTadBoundaries(assembly *genome.Assembly) ([]*cache.TadBoundary, error) {
	rows, err := s.db.Query(`SELECT boundary_id, contig, start_pos, end_pos, stability
		FROM tad_boundaries ORDER BY contig, start_pos, boundary_id`)
	if err != nil {
		return nil, fmt.Errorf("query TAD boundaries: %w", err)
	}
	defer rows.Close()

	var boundaries []*cache.TadBoundary
	for rows.Next() {
		var b cache.TadBoundary
		var contig string
		var start, end int
		if err := rows.Scan(&b.ID, &contig, &start, &end, &b.Stability); err != nil {
			return nil, fmt.Errorf("scan TAD boundary: %w", err)
		}
		c, ok := assembly.Contig(contig)
		if !ok {
			continue
		}
		b.Region = genome.NewRegion(c, genome.Positive, start, end)
		boundaries = append(boundaries, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate TAD boundaries: %w", err)
	}
	return boundaries, nil
}

// LoadCache reads the whole landscape and indexes it.
func (s *Store) LoadCache(assembly *genome.Assembly) (*cache.Cache, error) {
	genes, err := s.LoadGenes(assembly)
	if err != nil {
		return nil, err
	}
	enhancers, err := s.LoadEnhancers(assembly)
	if err != nil {
		return nil, err
	}
	boundaries, err := s.LoadTadBoundaries(assembly)
	if err != nil {
		return nil, err
	}
	return cache.New(genes, enhancers, boundaries)
}
