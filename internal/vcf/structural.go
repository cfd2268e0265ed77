package vcf

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/monarch-initiative/svanna-go/internal/sv"
)

// ErrUnsupportedRecord is returned for records that cannot be turned into a
// structural variant.
var ErrUnsupportedRecord = errors.New("unsupported record")

// bndAlt matches breakend ALT alleles such as G]1:123], ]1:123]G, G[1:123[ and [1:123[G.
var bndAlt = regexp.MustCompile(`^([A-Za-z]*)([\[\]])([^:\[\]]+):(\d+)([\[\]])([A-Za-z]*)$`)

// Converter turns VCF records into structural variants. A Converter tracks
// breakend mates it has already emitted and is not safe for concurrent use.
type Converter struct {
	assembly *genome.Assembly
	logger   *zap.Logger
	mates    map[string]struct{} // IDs of mates whose partner was emitted
}

// NewConverter creates a converter resolving contigs in assembly.
func NewConverter(assembly *genome.Assembly) *Converter {
	return &Converter{assembly: assembly, logger: zap.NewNop(), mates: make(map[string]struct{})}
}

// SetLogger sets the logger.
func (c *Converter) SetLogger(logger *zap.Logger) {
	c.logger = logger
}

func unsupported(rec *Record, format string, args ...any) error {
	return fmt.Errorf("%w: line %d (%s): %s", ErrUnsupportedRecord, rec.Line, rec.DisplayID(), fmt.Sprintf(format, args...))
}

// Convert converts rec. It returns nil, nil for records that are skipped:
// records on unknown contigs and breakends whose mate was already converted.
func (c *Converter) Convert(rec *Record) (*sv.Variant, error) {
	contig, ok := c.assembly.Contig(rec.Chrom)
	if !ok {
		c.logger.Debug("skipping record on unknown contig",
			zap.String("id", rec.DisplayID()),
			zap.String("chrom", rec.Chrom))
		return nil, nil
	}
	if strings.Contains(rec.Alt, ",") {
		return nil, unsupported(rec, "multiple ALT alleles %q", rec.Alt)
	}

	svType := sv.ParseVariantType(rec.Info["SVTYPE"])
	switch {
	case svType == sv.BND || rec.IsBreakendAlt():
		return c.breakend(rec, contig)
	case svType == sv.Unknown && rec.IsSymbolic():
		svType = sv.ParseVariantType(strings.Trim(rec.Alt, "<>"))
	case svType == sv.Unknown:
		return c.sequence(rec, contig)
	}
	return c.symbolic(rec, contig, svType)
}

// symbolic converts records described by SVTYPE, END and SVLEN. The first
// base of the record is padding, so the affected region starts after POS.
func (c *Converter) symbolic(rec *Record, contig *genome.Contig, svType sv.VariantType) (*sv.Variant, error) {
	svLen, hasLen, err := rec.InfoInt("SVLEN")
	if err != nil {
		return nil, unsupported(rec, "invalid SVLEN: %v", err)
	}
	end, hasEnd, err := rec.InfoInt("END")
	if err != nil {
		return nil, unsupported(rec, "invalid END: %v", err)
	}

	start := rec.Pos
	switch {
	case svType == sv.Insertion:
		end = start
	case !hasEnd && hasLen:
		end = start + abs(svLen)
	case !hasEnd:
		return nil, unsupported(rec, "%s without END or SVLEN", svType)
	}
	if end < start || end > contig.Length {
		return nil, unsupported(rec, "END %d out of range", end)
	}

	changeLength := svLen
	if !hasLen {
		switch svType {
		case sv.Deletion:
			changeLength = start - end
		case sv.Duplication:
			changeLength = end - start
		}
	}
	if svType == sv.Insertion || svType == sv.Duplication {
		changeLength = abs(changeLength)
	}

	v := sv.NewVariant(rec.DisplayID(), genome.NewRegion(contig, genome.Positive, start, end), svType, changeLength)
	if svType == sv.CNV {
		cn, ok, err := rec.InfoInt("CN")
		if err != nil {
			return nil, unsupported(rec, "invalid CN: %v", err)
		}
		if ok {
			v.CopyNumber = cn
		}
	}
	return v, nil
}

// sequence converts records with explicit REF and ALT bases.
func (c *Converter) sequence(rec *Record, contig *genome.Contig) (*sv.Variant, error) {
	ref, alt := rec.Ref, rec.Alt
	start := rec.Pos - 1
	if start+len(ref) > contig.Length {
		return nil, unsupported(rec, "REF extends past contig end")
	}
	id := rec.DisplayID()

	switch {
	case len(ref) == 1 && len(alt) == 1:
		return sv.NewVariant(id, genome.NewRegion(contig, genome.Positive, start, start+1), sv.SNV, 0), nil
	case len(alt) > len(ref) && strings.HasPrefix(alt, ref):
		pos := start + len(ref)
		return sv.NewVariant(id, genome.NewRegion(contig, genome.Positive, pos, pos), sv.Insertion, len(alt)-len(ref)), nil
	case len(ref) > len(alt) && strings.HasPrefix(ref, alt):
		return sv.NewVariant(id, genome.NewRegion(contig, genome.Positive, start+len(alt), start+len(ref)),
			sv.Deletion, len(alt)-len(ref)), nil
	default:
		// Kept so that dispatch reports the unsupported type.
		return sv.NewVariant(id, genome.NewRegion(contig, genome.Positive, start, start+len(ref)),
			sv.Unknown, len(alt)-len(ref)), nil
	}
}

// breakend converts a record in bracket notation. Records whose ID was named
// as MATEID by an earlier record are skipped.
func (c *Converter) breakend(rec *Record, contig *genome.Contig) (*sv.Variant, error) {
	if _, seen := c.mates[rec.ID]; seen {
		delete(c.mates, rec.ID)
		return nil, nil
	}

	m := bndAlt.FindStringSubmatch(rec.Alt)
	if m == nil {
		return nil, unsupported(rec, "invalid breakend ALT %q", rec.Alt)
	}
	head, opening, mateChrom, matePosStr, closing, tail := m[1], m[2], m[3], m[4], m[5], m[6]
	if opening != closing {
		return nil, unsupported(rec, "mismatched brackets in %q", rec.Alt)
	}
	mateContig, ok := c.assembly.Contig(mateChrom)
	if !ok {
		c.logger.Debug("skipping breakend with mate on unknown contig",
			zap.String("id", rec.DisplayID()),
			zap.String("chrom", mateChrom))
		return nil, nil
	}
	matePos, err := strconv.Atoi(matePosStr)
	if err != nil || matePos < 1 || matePos > mateContig.Length {
		return nil, unsupported(rec, "invalid mate position %q", matePosStr)
	}

	// The joined sequence continues after POS when the REF base leads the
	// allele, and before POS when it trails.
	var leftStrand genome.Strand
	var inserted string
	switch {
	case head != "" && strings.HasPrefix(head, rec.Ref):
		leftStrand, inserted = genome.Positive, head[len(rec.Ref):]
	case tail != "" && strings.HasSuffix(tail, rec.Ref):
		leftStrand, inserted = genome.Negative, tail[:len(tail)-len(rec.Ref)]
	default:
		return nil, unsupported(rec, "REF %q matches neither end of %q", rec.Ref, rec.Alt)
	}
	leftPos := rec.Pos
	if leftStrand == genome.Negative {
		leftPos--
	}

	// '[' joins the sequence starting at the mate position, ']' the sequence ending there.
	rightStrand, rightPos := genome.Positive, matePos-1
	if opening == "]" {
		rightStrand, rightPos = genome.Negative, matePos
	}

	mateID := rec.Info["MATEID"]
	if mateID == "" {
		mateID = rec.DisplayID() + "_mate"
	} else {
		c.mates[mateID] = struct{}{}
	}

	left := &sv.Breakend{
		ID:     rec.DisplayID(),
		Region: genome.NewRegion(contig, genome.Positive, leftPos, leftPos).WithStrand(leftStrand),
	}
	right := &sv.Breakend{
		ID:     mateID,
		Region: genome.NewRegion(mateContig, genome.Positive, rightPos, rightPos).WithStrand(rightStrand),
	}
	id := rec.DisplayID()
	if event := rec.Info["EVENT"]; event != "" {
		id = event
	}
	return sv.NewBreakendVariant(id, left, right, len(inserted)), nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
