package duckdb

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/monarch-initiative/svanna-go/internal/prioritize"
)

// PriorityRecord is the persisted priority of one variant of a run.
type PriorityRecord struct {
	Seq       int
	VariantID string
	Contig    string
	Start     int // Zero-based, positive strand
	End       int
	Type      string
	Priority  prioritize.SvPriority
}

// NewRunID returns a fresh identifier for a prioritization run.
func NewRunID() uuid.UUID {
	return uuid.New()
}

// WritePriorities appends the records of a run.
func (s *Store) WritePriorities(runID uuid.UUID, records []PriorityRecord) error {
	if len(records) == 0 {
		return nil
	}
	run := runID.String()
	now := time.Now().UTC()

	if err := s.appendRows("sv_priorities", func(appendRow func(...driver.Value) error) error {
		for _, r := range records {
			var score driver.Value
			if r.Priority.Known && !math.IsNaN(r.Priority.Score) {
				score = r.Priority.Score
			}
			if err := appendRow(run, int64(r.Seq), r.VariantID, r.Contig, int64(r.Start), int64(r.End),
				r.Type, score, r.Priority.Known, now); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	return s.appendRows("gene_priorities", func(appendRow func(...driver.Value) error) error {
		for _, r := range records {
			genes := make([]string, 0, len(r.Priority.GeneScores))
			for g := range r.Priority.GeneScores {
				genes = append(genes, g)
			}
			sort.Strings(genes)
			for _, g := range genes {
				if err := appendRow(run, int64(r.Seq), g, r.Priority.GeneScores[g]); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// LoadPriorities reads the records of a run in sequence order.
func (s *Store) LoadPriorities(runID uuid.UUID) ([]PriorityRecord, error) {
	run := runID.String()
	rows, err := s.db.Query(`SELECT seq, variant_id, contig, start_pos, end_pos, sv_type, score, known
		FROM sv_priorities WHERE run_id = ? ORDER BY seq`, run)
	if err != nil {
		return nil, fmt.Errorf("query priorities: %w", err)
	}
	defer rows.Close()

	var records []PriorityRecord
	bySeq := make(map[int]int)
	for rows.Next() {
		var r PriorityRecord
		var score sql.NullFloat64
		var known bool
		if err := rows.Scan(&r.Seq, &r.VariantID, &r.Contig, &r.Start, &r.End, &r.Type, &score, &known); err != nil {
			return nil, fmt.Errorf("scan priority: %w", err)
		}
		if known && score.Valid {
			r.Priority = prioritize.Of(score.Float64)
		} else {
			r.Priority = prioritize.Unknown()
		}
		bySeq[r.Seq] = len(records)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate priorities: %w", err)
	}

	genes, err := s.db.Query(`SELECT seq, gene_id, score FROM gene_priorities WHERE run_id = ?`, run)
	if err != nil {
		return nil, fmt.Errorf("query gene priorities: %w", err)
	}
	defer genes.Close()

	for genes.Next() {
		var seq int
		var gene string
		var score float64
		if err := genes.Scan(&seq, &gene, &score); err != nil {
			return nil, fmt.Errorf("scan gene priority: %w", err)
		}
		i, ok := bySeq[seq]
		if !ok {
			continue
		}
		if records[i].Priority.GeneScores == nil {
			records[i].Priority.GeneScores = make(map[string]float64)
		}
		records[i].Priority.GeneScores[gene] = score
	}
	if err := genes.Err(); err != nil {
		return nil, fmt.Errorf("iterate gene priorities: %w", err)
	}
	return records, nil
}

// Runs returns the identifiers of all stored runs, most recent first.
func (s *Store) Runs() ([]uuid.UUID, error) {
	rows, err := s.db.Query(`SELECT run_id, max(created_at) AS t FROM sv_priorities GROUP BY run_id ORDER BY t DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []uuid.UUID
	for rows.Next() {
		var id string
		var t time.Time
		if err := rows.Scan(&id, &t); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		u, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		runs = append(runs, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
