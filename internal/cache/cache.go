package cache

import (
	"fmt"
	"sort"

	"github.com/biogo/store/interval"

	"github.com/monarch-initiative/svanna-go/internal/genome"
)

// DefaultStabilityThreshold is the minimum stability of a TAD boundary used to
// delimit an evaluation window.
const DefaultStabilityThreshold = 80.0

// Cache indexes genes, enhancers and TAD boundaries per contig. A Cache is
// immutable after New and safe for concurrent reads.
type Cache struct {
	genes      map[string]*interval.IntTree
	enhancers  map[string]*interval.IntTree
	boundaries map[string]*BoundaryIndex

	nGenes, nEnhancers, nBoundaries int
	threshold                       float64
}

// featureInterval stores a located feature in a biogo interval tree.
type featureInterval struct {
	uid     uintptr
	start   int
	end     int
	feature any
}

func (i featureInterval) Overlap(b interval.IntRange) bool {
	return b.Start < i.end && i.start < b.End
}
func (i featureInterval) ID() uintptr { return i.uid }
func (i featureInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.start, End: i.end}
}

// query is a half-open range overlapper used to search the trees.
type query struct {
	start, end int
}

func (q query) Overlap(b interval.IntRange) bool {
	return b.Start < q.end && q.start < b.End
}

// positive returns r on the positive strand in zero-based coordinates.
func positive(r genome.Region) genome.Region {
	return r.WithStrand(genome.Positive).WithCoordinateSystem(genome.ZeroBased)
}

// New builds a cache from the given features.
func New(genes []*Gene, enhancers []*Enhancer, boundaries []*TadBoundary) (*Cache, error) {
	c := &Cache{
		genes:      make(map[string]*interval.IntTree),
		enhancers:  make(map[string]*interval.IntTree),
		boundaries: make(map[string]*BoundaryIndex),
		threshold:  DefaultStabilityThreshold,
	}

	uid := uintptr(0)
	for _, g := range genes {
		if err := insert(c.genes, g.Region, g, uid); err != nil {
			return nil, fmt.Errorf("index gene %s: %w", g.ID, err)
		}
		uid++
	}
	for _, e := range enhancers {
		if err := insert(c.enhancers, e.Region, e, uid); err != nil {
			return nil, fmt.Errorf("index enhancer %s: %w", e.ID, err)
		}
		uid++
	}
	for _, t := range c.genes {
		t.AdjustRanges()
	}
	for _, t := range c.enhancers {
		t.AdjustRanges()
	}

	byContig := make(map[string][]*TadBoundary)
	for _, b := range boundaries {
		byContig[b.Region.Contig.Name] = append(byContig[b.Region.Contig.Name], b)
	}
	for name, bs := range byContig {
		c.boundaries[name] = BuildBoundaryIndex(bs)
	}

	c.nGenes, c.nEnhancers, c.nBoundaries = len(genes), len(enhancers), len(boundaries)
	return c, nil
}

func insert(trees map[string]*interval.IntTree, r genome.Region, feature any, uid uintptr) error {
	name := r.Contig.Name
	t, ok := trees[name]
	if !ok {
		t = &interval.IntTree{}
		trees[name] = t
	}
	p := positive(r)
	return t.Insert(featureInterval{uid: uid, start: p.Start, end: p.End, feature: feature}, true)
}

func search(trees map[string]*interval.IntTree, q genome.Region) []featureInterval {
	t, ok := trees[q.Contig.Name]
	if !ok {
		return nil
	}
	p := positive(q)
	var hits []featureInterval
	for _, iv := range t.Get(query{start: p.Start, end: p.End}) {
		hits = append(hits, iv.(featureInterval))
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].start != hits[j].start {
			return hits[i].start < hits[j].start
		}
		if hits[i].end != hits[j].end {
			return hits[i].end < hits[j].end
		}
		return hits[i].uid < hits[j].uid
	})
	return hits
}

// SetStabilityThreshold sets the minimum stability of boundaries returned by
// UpstreamBoundary and DownstreamBoundary. Call before sharing the cache.
func (c *Cache) SetStabilityThreshold(threshold float64) {
	c.threshold = threshold
}

// OverlappingGenes returns genes that overlap q, ordered by position.
func (c *Cache) OverlappingGenes(q genome.Region) []*Gene {
	var out []*Gene
	for _, h := range search(c.genes, q) {
		out = append(out, h.feature.(*Gene))
	}
	return out
}

// GenesIn returns genes located entirely within q.
func (c *Cache) GenesIn(q genome.Region) []*Gene {
	var out []*Gene
	for _, g := range c.OverlappingGenes(q) {
		if q.Contains(g.Region) {
			out = append(out, g)
		}
	}
	return out
}

// OverlappingEnhancers returns enhancers that overlap q, ordered by position.
func (c *Cache) OverlappingEnhancers(q genome.Region) []*Enhancer {
	var out []*Enhancer
	for _, h := range search(c.enhancers, q) {
		out = append(out, h.feature.(*Enhancer))
	}
	return out
}

// EnhancersIn returns enhancers located entirely within q.
func (c *Cache) EnhancersIn(q genome.Region) []*Enhancer {
	var out []*Enhancer
	for _, e := range c.OverlappingEnhancers(q) {
		if q.Contains(e.Region) {
			out = append(out, e)
		}
	}
	return out
}

// TadBoundariesIn returns TAD boundaries located entirely within q.
func (c *Cache) TadBoundariesIn(q genome.Region) []*TadBoundary {
	idx, ok := c.boundaries[q.Contig.Name]
	if !ok {
		return nil
	}
	p := positive(q)
	var out []*TadBoundary
	for _, b := range idx.FindOverlaps(p.Start, p.End) {
		if q.Contains(b.Region) {
			out = append(out, b)
		}
	}
	return out
}

// UpstreamBoundary returns the nearest sufficiently stable boundary upstream
// of q, upstream being relative to the strand of q.
func (c *Cache) UpstreamBoundary(q genome.Region) (*TadBoundary, bool) {
	idx, ok := c.boundaries[q.Contig.Name]
	if !ok {
		return nil, false
	}
	p := positive(q)
	if q.Strand == genome.Negative {
		return idx.Downstream(p.End, c.threshold)
	}
	return idx.Upstream(p.Start, c.threshold)
}

// DownstreamBoundary returns the nearest sufficiently stable boundary
// downstream of q, downstream being relative to the strand of q.
func (c *Cache) DownstreamBoundary(q genome.Region) (*TadBoundary, bool) {
	idx, ok := c.boundaries[q.Contig.Name]
	if !ok {
		return nil, false
	}
	p := positive(q)
	if q.Strand == genome.Negative {
		return idx.Upstream(p.Start, c.threshold)
	}
	return idx.Downstream(p.End, c.threshold)
}

// GeneCount returns the number of indexed genes.
func (c *Cache) GeneCount() int { return c.nGenes }

// EnhancerCount returns the number of indexed enhancers.
func (c *Cache) EnhancerCount() int { return c.nEnhancers }

// TadBoundaryCount returns the number of indexed TAD boundaries.
func (c *Cache) TadBoundaryCount() int { return c.nBoundaries }
