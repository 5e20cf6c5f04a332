package dmf

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/jgbaldwinbrown/iter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vcfIn = `##fileformat=VCFv4.2
##contig=<ID=1>
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	s1
1	100	.	A	C	50	PASS	.	GT	0/1
1	125	rs1	G	T	.	PASS	DP=3	GT	1/1
1	130	.	AT	A	.	PASS	.	GT	0/1
chrX	5	.	C	T	.	PASS	.	GT	0/1
`

func TestReadVcf(t *testing.T) {
	snvs, e := iter.Collect[Snv](ReadVcf(strings.NewReader(vcfIn)))
	require.NoError(t, e)
	require.Len(t, snvs, 4)

	s := snvs[1]
	assert.Equal(t, "1", s.Chr)
	assert.Equal(t, int64(125), s.Pos())
	assert.Equal(t, "G", s.Ref)
	assert.Equal(t, "T", s.Alt)
	assert.Equal(t, int64(124), s.Start)
	assert.Equal(t, int64(125), s.End)
}

// Only CHROM, POS, ID, REF and ALT are needed, as in `cut -f1-5` output.
func TestReadVcfFiveColumns(t *testing.T) {
	snvs, e := iter.Collect[Snv](ReadVcf(strings.NewReader("1\t100\t.\tA\tC\n1\t125\t.\tG\tT\n")))
	require.NoError(t, e)
	require.Len(t, snvs, 2)
	assert.Equal(t, "C", snvs[0].Alt)
}

func TestReadVcfMalformed(t *testing.T) {
	type malTest struct {
		Name string
		In   string
	}
	tests := []malTest{
		malTest{"short", "1\t100\t.\tA\n"},
		malTest{"badpos", "1\tabc\t.\tA\tC\n"},
		malTest{"zeropos", "1\t0\t.\tA\tC\n"},
	}
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			_, e := iter.Collect[Snv](ReadVcf(strings.NewReader(test.In)))
			assert.ErrorIs(t, e, ErrMalformed)
		})
	}
}

// truncatedGz gzips n VCF lines, flushing after each, and cuts the stream at
// the flush after line cut.
func truncatedGz(t *testing.T, n, cut int) []byte {
	t.Helper()
	var b bytes.Buffer
	w := gzip.NewWriter(&b)
	end := 0
	for i := 0; i < n; i++ {
		_, e := fmt.Fprintf(w, "1\t%v\t.\tA\tC\n", 100+i*50)
		require.NoError(t, e)
		require.NoError(t, w.Flush())
		if i+1 == cut {
			end = b.Len()
		}
	}
	require.NoError(t, w.Close())
	return b.Bytes()[:end]
}

func TestReadVcfTruncatedGzip(t *testing.T) {
	r, e := gzip.NewReader(bytes.NewReader(truncatedGz(t, 2000, 1000)))
	require.NoError(t, e)

	_, e = Accumulate(ReadVcf(r), 120, 20)
	require.Error(t, e)
	assert.ErrorIs(t, e, io.ErrUnexpectedEOF)
}

func TestReadCutTruncatedGzip(t *testing.T) {
	var b bytes.Buffer
	w := gzip.NewWriter(&b)
	_, e := io.WriteString(w, cutIn)
	require.NoError(t, e)
	require.NoError(t, w.Flush())
	full := b.Len()
	require.NoError(t, w.Close())

	r, e := gzip.NewReader(bytes.NewReader(b.Bytes()[:full]))
	require.NoError(t, e)
	_, e = iter.Collect[Snv](ReadCut(r))
	assert.ErrorIs(t, e, io.ErrUnexpectedEOF)
}

const cutIn = "1\t100\tA\tC\n1\t125\tG\tT\n\n2\t7\tt\tg\n"

func TestReadCut(t *testing.T) {
	snvs, e := iter.Collect[Snv](ReadCut(strings.NewReader(cutIn)))
	require.NoError(t, e)
	require.Len(t, snvs, 3)
	assert.Equal(t, "2", snvs[2].Chr)
	assert.Equal(t, int64(7), snvs[2].Pos())
	assert.Equal(t, "t", snvs[2].Ref)

	_, e = iter.Collect[Snv](ReadCut(strings.NewReader("1\t100\tA\n")))
	assert.ErrorIs(t, e, ErrMalformed)
}

func TestRecordsFormat(t *testing.T) {
	_, e := Records(strings.NewReader(""), "bcf")
	assert.ErrorIs(t, e, ErrFormat)
}

func TestVcfToFingerprint(t *testing.T) {
	res, e := Accumulate(ReadVcf(strings.NewReader(vcfIn)), 120, 20)
	require.NoError(t, e)
	assert.Equal(t, int64(1), res.Pairs)
	assert.Equal(t, 1.0, res.Distant.Rows["ACGT"][24])
	assert.Equal(t, int64(2), res.Filtered)
}
