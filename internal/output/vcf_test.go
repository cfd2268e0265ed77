package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/monarch-initiative/svanna-go/internal/prioritize"
	"github.com/monarch-initiative/svanna-go/internal/vcf"
)

func TestVCFWriter_Header(t *testing.T) {
	headers := []string{
		"##fileformat=VCFv4.2",
		"##reference=GRCh38",
		"##INFO=<ID=SVANNA,Number=1,Type=Float,Description=\"stale\">",
		"##INFO=<ID=SVTYPE,Number=1,Type=String,Description=\"Type of structural variant\">",
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO",
	}

	var buf bytes.Buffer
	w := NewVCFWriter(&buf, headers)
	if err := w.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"##fileformat=VCFv4.2",
		"##reference=GRCh38",
		"##INFO=<ID=SVTYPE,Number=1,Type=String,Description=\"Type of structural variant\">",
		infoHeaderLines[0],
		infoHeaderLines[1],
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d header lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestVCFWriter_Write(t *testing.T) {
	rec := &vcf.Record{
		Chrom:         "chr1",
		Pos:           10000,
		ID:            "del1",
		Ref:           "N",
		Alt:           "<DEL>",
		Qual:          60,
		Filter:        "PASS",
		RawInfo:       "SVTYPE=DEL;END=20000;SVANNA=9",
		SampleColumns: "GT\t0/1",
	}

	tests := []struct {
		name     string
		priority prioritize.SvPriority
		want     string
	}{
		{
			name:     "known",
			priority: prioritize.Of(2.5),
			want:     "chr1\t10000\tdel1\tN\t<DEL>\t60\tPASS\tSVTYPE=DEL;END=20000;SVANNA=2.5\tGT\t0/1",
		},
		{
			name:     "unknown",
			priority: prioritize.Unknown(),
			want:     "chr1\t10000\tdel1\tN\t<DEL>\t60\tPASS\tSVTYPE=DEL;END=20000\tGT\t0/1",
		},
		{
			name:     "granular",
			priority: prioritize.Granular(map[string]float64{"G1": 1, "G2": 2}),
			want:     "chr1\t10000\tdel1\tN\t<DEL>\t60\tPASS\tSVTYPE=DEL;END=20000;SVANNA=2;SVANNA_GENES=G2|2,G1|1\tGT\t0/1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewVCFWriter(&buf, nil)
			if err := w.Write(rec, tt.priority); err != nil {
				t.Fatal(err)
			}
			if err := w.Flush(); err != nil {
				t.Fatal(err)
			}
			if got := strings.TrimSuffix(buf.String(), "\n"); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestVCFWriter_EmptyInfo(t *testing.T) {
	rec := &vcf.Record{Chrom: "1", Pos: 5, ID: ".", Ref: "A", Alt: "G", Filter: ".", RawInfo: "."}

	var buf bytes.Buffer
	w := NewVCFWriter(&buf, nil)
	if err := w.Write(rec, prioritize.Of(0)); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "1\t5\t.\tA\tG\t.\t.\tSVANNA=0\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStripInfo(t *testing.T) {
	tests := map[string]string{
		"":                          ".",
		".":                         ".",
		"SVTYPE=DEL":                "SVTYPE=DEL",
		"SVANNA=1;SVANNA_GENES=G|1": ".",
		"A=1;SVANNA=1;B":            "A=1;B",
		"SVANNA_LIKE=1":             "SVANNA_LIKE=1",
	}
	for in, want := range tests {
		if got := stripInfo(in); got != want {
			t.Errorf("stripInfo(%q) = %q, want %q", in, got, want)
		}
	}
}
