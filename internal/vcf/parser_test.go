package vcf

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVCF = `##fileformat=VCFv4.2
##INFO=<ID=SVTYPE,Number=1,Type=String,Description="Type of structural variant">
##INFO=<ID=END,Number=1,Type=Integer,Description="End position">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	NA12878
1	1000	del1	N	<DEL>	60	PASS	SVTYPE=DEL;END=2000;SVLEN=-1000;IMPRECISE	GT	0/1

chr2	5000	bnd1	A	A[3:100[	.	PASS	SVTYPE=BND;MATEID=bnd2	GT	0/1
`

func writeVCF(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readAll(t *testing.T, p *Parser) []*Record {
	t.Helper()
	var out []*Record
	for {
		rec, err := p.Next()
		require.NoError(t, err)
		if rec == nil {
			return out
		}
		out = append(out, rec)
	}
}

func TestParser_Records(t *testing.T) {
	p, err := NewParser(writeVCF(t, "calls.vcf", testVCF))
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, []string{"NA12878"}, p.SampleNames())
	assert.Len(t, p.Header(), 4)

	records := readAll(t, p)
	require.Len(t, records, 2)

	del := records[0]
	assert.Equal(t, "1", del.Chrom)
	assert.Equal(t, 1000, del.Pos)
	assert.Equal(t, "del1", del.ID)
	assert.Equal(t, "<DEL>", del.Alt)
	assert.Equal(t, 60.0, del.Qual)
	assert.Equal(t, 5, del.Line)
	assert.True(t, del.IsSymbolic())
	assert.True(t, del.HasInfo("IMPRECISE"))
	assert.Equal(t, "DEL", del.Info["SVTYPE"])

	end, ok, err := del.InfoInt("END")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2000, end)

	bnd := records[1]
	assert.Equal(t, "2", bnd.NormalizeChrom())
	assert.True(t, bnd.IsBreakendAlt())
	assert.False(t, bnd.IsSymbolic())
	assert.Equal(t, 7, bnd.Line)
}

func TestParser_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.vcf.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(testVCF))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	p, err := NewParser(path)
	require.NoError(t, err)
	defer p.Close()
	assert.Len(t, readAll(t, p), 2)
}

func TestParser_FromReader(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(strings.TrimSuffix(testVCF, "\n")))
	require.NoError(t, err)
	defer p.Close()

	// The last line lacks a trailing newline.
	assert.Len(t, readAll(t, p), 2)
}

func TestParser_Errors(t *testing.T) {
	_, err := NewParser("/nonexistent/calls.vcf")
	assert.Error(t, err)

	_, err = NewParserFromReader(strings.NewReader("##fileformat=VCFv4.2\n1\t100\t.\tA\tG\t.\t.\t.\n"))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)

	_, err = NewParserFromReader(strings.NewReader("##fileformat=VCFv4.2\n"))
	assert.ErrorContains(t, err, "no #CHROM header line")

	p, err := NewParserFromReader(strings.NewReader("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n1\tx\t.\tA\tG\t.\t.\t.\n1\t100\t.\tA\n"))
	require.NoError(t, err)
	_, err = p.Next()
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Error(), "invalid position")
	_, err = p.Next()
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Error(), "expected at least 8 columns")
}

func TestRecord_DisplayID(t *testing.T) {
	assert.Equal(t, "sv1", (&Record{ID: "sv1", Chrom: "1", Pos: 5}).DisplayID())
	assert.Equal(t, "chr1:5", (&Record{ID: ".", Chrom: "chr1", Pos: 5}).DisplayID())
}

func TestParseInfo(t *testing.T) {
	info := parseInfo("SVTYPE=DEL;END=200;PRECISE;CIPOS=-5,5")
	assert.Equal(t, map[string]string{"SVTYPE": "DEL", "END": "200", "PRECISE": "", "CIPOS": "-5,5"}, info)
	assert.Empty(t, parseInfo("."))

	r := &Record{Info: info}
	v, ok, err := r.InfoInt("CIPOS")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, -5, v)

	_, ok, err = r.InfoInt("SVLEN")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, _, err = r.InfoInt("SVTYPE")
	assert.Error(t, err)
}
