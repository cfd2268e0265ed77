// Package sv provides the structural variant model used by route dispatching.
package sv

import (
	"fmt"
	"strings"

	"github.com/monarch-initiative/svanna-go/internal/genome"
)

// VariantType is the structural variant class.
type VariantType int

const (
	Unknown VariantType = iota
	SNV
	Deletion
	Duplication
	Insertion
	Inversion
	CNV
	BND
)

var typeNames = map[VariantType]string{
	Unknown:     "UNKNOWN",
	SNV:         "SNV",
	Deletion:    "DEL",
	Duplication: "DUP",
	Insertion:   "INS",
	Inversion:   "INV",
	CNV:         "CNV",
	BND:         "BND",
}

func (t VariantType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseVariantType converts a VCF SVTYPE (e.g. "DEL", "DUP:TANDEM") into a VariantType.
func ParseVariantType(s string) VariantType {
	base, _, _ := strings.Cut(s, ":")
	switch base {
	case "SNV", "SNP":
		return SNV
	case "DEL":
		return Deletion
	case "DUP":
		return Duplication
	case "INS":
		return Insertion
	case "INV":
		return Inversion
	case "CNV":
		return CNV
	case "BND", "TRA":
		return BND
	default:
		return Unknown
	}
}

// NoCopyNumber marks variants without an explicit copy number.
const NoCopyNumber = -1

// Breakend is one side of a breakend variant. Its region is empty (start == end).
type Breakend struct {
	ID string
	genome.Region
}

// Variant is a structural variant. Non-breakend variants use Region; breakend
// variants carry Left and Right.
type Variant struct {
	ID string
	genome.Region
	Type         VariantType
	ChangeLength int // Inserted length for insertions, inserted sequence length for breakends
	CopyNumber   int

	Left  *Breakend
	Right *Breakend
}

// IsBreakend reports whether the variant is a breakend (translocation) variant.
func (v *Variant) IsBreakend() bool {
	return v.Type == BND
}

func (v *Variant) String() string {
	if v.IsBreakend() && v.Left != nil && v.Right != nil {
		return fmt.Sprintf("%s BND %s/%s", v.ID, v.Left.Region, v.Right.Region)
	}
	return fmt.Sprintf("%s %s %s", v.ID, v.Type, v.Region)
}

// NewVariant creates a non-breakend variant over region.
func NewVariant(id string, region genome.Region, t VariantType, changeLength int) *Variant {
	return &Variant{
		ID:           id,
		Region:       region,
		Type:         t,
		ChangeLength: changeLength,
		CopyNumber:   NoCopyNumber,
	}
}

// NewBreakendVariant creates a breakend variant joining left and right.
// The variant region is the left breakend.
func NewBreakendVariant(id string, left, right *Breakend, insertedLength int) *Variant {
	return &Variant{
		ID:           id,
		Region:       left.Region,
		Type:         BND,
		ChangeLength: insertedLength,
		CopyNumber:   NoCopyNumber,
		Left:         left,
		Right:        right,
	}
}
