// Package prioritize ranks structural variants by how much they disturb the
// genes and enhancers around them.
package prioritize

import (
	"maps"
	"math"
)

// SvPriority is the priority of a single variant. Unknown priorities carry a
// NaN score.
type SvPriority struct {
	Score      float64
	Known      bool
	GeneScores map[string]float64 // Per-gene scores of the granular prioritizer
}

// Unknown returns the priority of a variant that could not be evaluated.
func Unknown() SvPriority {
	return SvPriority{Score: math.NaN()}
}

// Of returns a known priority.
func Of(score float64) SvPriority {
	return SvPriority{Score: score, Known: true}
}

// Granular returns a known priority holding per-gene scores. The overall
// score is the highest gene score, or 0 when no gene was evaluated.
func Granular(geneScores map[string]float64) SvPriority {
	var best float64
	for _, s := range geneScores {
		best = max(best, s)
	}
	return SvPriority{Score: best, Known: true, GeneScores: maps.Clone(geneScores)}
}

// Equal reports whether p and o hold the same priority. Unknown priorities
// are equal to each other.
func (p SvPriority) Equal(o SvPriority) bool {
	if p.Known != o.Known {
		return false
	}
	if !p.Known {
		return true
	}
	return p.Score == o.Score && maps.Equal(p.GeneScores, o.GeneScores)
}
