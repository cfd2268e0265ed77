package duckdb

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monarch-initiative/svanna-go/internal/cache"
	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/monarch-initiative/svanna-go/internal/prioritize"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func chr12(t *testing.T) (*genome.Assembly, *genome.Contig) {
	t.Helper()
	asm := genome.GRCh38()
	c, ok := asm.Contig("12")
	require.True(t, ok)
	return asm, c
}

// krasLike returns a negative-strand gene with one two-exon coding transcript.
func krasLike(c *genome.Contig) *cache.Gene {
	neg := func(start, end int) genome.Region {
		return genome.NewRegion(c, genome.Positive, start, end).WithStrand(genome.Negative)
	}
	tx := &cache.Transcript{
		ID:          "ENST00000311936",
		GeneID:      "ENSG00000133703",
		Biotype:     "protein_coding",
		Region:      neg(25205245, 25250929),
		Exons:       []genome.Region{neg(25250750, 25250929), neg(25205245, 25209911)},
		CDSStart:    c.Length - 25245395,
		CDSEnd:      c.Length - 25209797,
		IsCanonical: true,
	}
	return &cache.Gene{
		ID:          "ENSG00000133703",
		Symbol:      "KRAS",
		Biotype:     "protein_coding",
		Region:      tx.Region,
		Transcripts: []*cache.Transcript{tx},
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
	assert.Empty(t, s.Path())
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "svanna.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestWriteAndLoadGenes(t *testing.T) {
	s := openInMemory(t)
	asm, c := chr12(t)
	want := krasLike(c)

	require.NoError(t, s.WriteGenes([]*cache.Gene{want}))

	genes, err := s.LoadGenes(asm)
	require.NoError(t, err)
	require.Len(t, genes, 1)
	got := genes[0]
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, "KRAS", got.Symbol)
	assert.Equal(t, want.Region, got.Region)
	assert.Equal(t, genome.Negative, got.Region.Strand)

	require.Len(t, got.Transcripts, 1)
	tx := got.Transcripts[0]
	assert.Equal(t, want.Transcripts[0].Region, tx.Region)
	assert.Equal(t, want.Transcripts[0].Exons, tx.Exons)
	assert.Equal(t, want.Transcripts[0].CDSStart, tx.CDSStart)
	assert.Equal(t, want.Transcripts[0].CDSEnd, tx.CDSEnd)
	assert.True(t, tx.IsCanonical)
	assert.False(t, tx.IsMANESelect)
	assert.True(t, tx.IsProteinCoding())
}

func TestWriteGenes_Replaces(t *testing.T) {
	s := openInMemory(t)
	asm, c := chr12(t)

	require.NoError(t, s.WriteGenes([]*cache.Gene{krasLike(c)}))
	other := &cache.Gene{ID: "ENSG1", Symbol: "ONE", Region: genome.NewRegion(c, genome.Positive, 100, 200)}
	require.NoError(t, s.WriteGenes([]*cache.Gene{other}))

	genes, err := s.LoadGenes(asm)
	require.NoError(t, err)
	require.Len(t, genes, 1)
	assert.Equal(t, "ENSG1", genes[0].ID)
	assert.Empty(t, genes[0].Transcripts)
}

func TestLoadGenes_SkipsUnknownContigs(t *testing.T) {
	s := openInMemory(t)
	alien := genome.NewSyntheticContig("HLA-A*01", 5000)
	g := &cache.Gene{ID: "ENSG2", Region: genome.NewRegion(alien, genome.Positive, 10, 20)}
	require.NoError(t, s.WriteGenes([]*cache.Gene{g}))

	genes, err := s.LoadGenes(genome.GRCh38())
	require.NoError(t, err)
	assert.Empty(t, genes)
}

func TestWriteAndLoadLandscape(t *testing.T) {
	s := openInMemory(t)
	asm, c := chr12(t)

	enhancers := []*cache.Enhancer{
		{ID: "enh1", Region: genome.NewRegion(c, genome.Positive, 25300000, 25300500), Developmental: true,
			Tissues: []cache.TissueSpecificity{
				{TermID: "UBERON:0000948", Label: "heart", Specificity: .7},
				{TermID: "UBERON:0000955", Label: "brain", Specificity: .2},
			}},
		{ID: "enh2", Region: genome.NewRegion(c, genome.Positive, 25100000, 25100400)},
	}
	boundaries := []*cache.TadBoundary{
		{ID: "tad1", Region: genome.NewRegion(c, genome.Positive, 25000000, 25040000), Stability: 95.5},
	}
	require.NoError(t, s.WriteGenes([]*cache.Gene{krasLike(c)}))
	require.NoError(t, s.WriteEnhancers(enhancers))
	require.NoError(t, s.WriteTadBoundaries(boundaries))

	gotEnhancers, err := s.LoadEnhancers(asm)
	require.NoError(t, err)
	require.Len(t, gotEnhancers, 2)
	assert.Equal(t, "enh2", gotEnhancers[0].ID)
	assert.Empty(t, gotEnhancers[0].Tissues)
	assert.Equal(t, enhancers[0].Region, gotEnhancers[1].Region)
	assert.True(t, gotEnhancers[1].Developmental)
	assert.Equal(t, enhancers[0].Tissues, gotEnhancers[1].Tissues)

	gotBoundaries, err := s.LoadTadBoundaries(asm)
	require.NoError(t, err)
	require.Len(t, gotBoundaries, 1)
	assert.Equal(t, *boundaries[0], *gotBoundaries[0])

	landscape, err := s.LoadCache(asm)
	require.NoError(t, err)
	assert.Equal(t, 1, landscape.GeneCount())
	assert.Equal(t, 2, landscape.EnhancerCount())
	assert.Equal(t, 1, landscape.TadBoundaryCount())
	genes := landscape.OverlappingGenes(krasLike(c).Region)
	require.Len(t, genes, 1)
	assert.Equal(t, "KRAS", genes[0].Symbol)
}

func TestSources(t *testing.T) {
	s := openInMemory(t)
	fp := FileFingerprint{Path: "/data/gencode.gtf.gz", Size: 1234, ModTime: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}

	unchanged, err := s.SourceUnchanged(SourceGenes, fp)
	require.NoError(t, err)
	assert.False(t, unchanged)

	require.NoError(t, s.RecordSource(SourceGenes, fp))
	unchanged, err = s.SourceUnchanged(SourceGenes, fp)
	require.NoError(t, err)
	assert.True(t, unchanged)

	grown := fp
	grown.Size++
	unchanged, err = s.SourceUnchanged(SourceGenes, grown)
	require.NoError(t, err)
	assert.False(t, unchanged)

	// Recording again replaces the previous fingerprint.
	require.NoError(t, s.RecordSource(SourceGenes, grown))
	sources, err := s.Sources()
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, grown.Size, sources[SourceGenes].Size)
	assert.Equal(t, grown.Path, sources[SourceGenes].Path)
}

func TestStatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tads.tsv")
	content := []byte("chrom\tstart\tend\tid\tstability\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, fp.Path)
	assert.EqualValues(t, len(content), fp.Size)

	_, err = StatFile(filepath.Join(t.TempDir(), "missing.tsv"))
	assert.Error(t, err)
}

func TestWriteAndLoadPriorities(t *testing.T) {
	s := openInMemory(t)
	run := NewRunID()

	records := []PriorityRecord{
		{Seq: 0, VariantID: "del1", Contig: "12", Start: 25200000, End: 25260000, Type: "DEL", Priority: prioritize.Of(2.5)},
		{Seq: 1, VariantID: "bnd1", Contig: "12", Start: 100, End: 100, Type: "BND", Priority: prioritize.Unknown()},
		{Seq: 2, VariantID: "dup1", Contig: "12", Start: 500, End: 900, Type: "DUP",
			Priority: prioritize.Granular(map[string]float64{"ENSG1": .5, "ENSG2": 1.5})},
	}
	require.NoError(t, s.WritePriorities(run, records))
	require.NoError(t, s.WritePriorities(NewRunID(), records[:1]))

	got, err := s.LoadPriorities(run)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range records {
		assert.Equal(t, records[i].VariantID, got[i].VariantID)
		assert.Equal(t, records[i].Start, got[i].Start)
		assert.Equal(t, records[i].Type, got[i].Type)
		assert.True(t, records[i].Priority.Equal(got[i].Priority), "record %d", i)
	}
	assert.True(t, math.IsNaN(got[1].Priority.Score))

	runs, err := s.Runs()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Contains(t, runs, run)
}

func TestWritePriorities_Empty(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WritePriorities(NewRunID(), nil))

	runs, err := s.Runs()
	require.NoError(t, err)
	assert.Empty(t, runs)
}
