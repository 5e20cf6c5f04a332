package dmf

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tableExpect = `#source	g.vcf.gz
#SNVpairs	3
#vectorLengths	2
#tooCloseCutoff	5
ACAG	0	1
ACGT	2	0
`

const tableNormExpect = `#source	g.vcf.gz
#SNVpairs	3
#vectorLengths	2
#tooCloseCutoff	5
ACAG	0.500	-1.250
ACGT	2.000	0.000
`

func smallMatrix() Matrix {
	m := NewMatrix([]string{"ACGT", "ACAG"}, 2)
	m.Inc("ACGT", 0)
	m.Inc("ACGT", 0)
	m.Inc("ACAG", 1)
	return m
}

var smallMeta = Meta{Source: "g.vcf.gz", Pairs: 3, L: 2, C: 5}

func TestWriteTable(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteTable(&b, smallMatrix(), smallMeta, RawPrecision))
	assert.Equal(t, tableExpect, b.String())

	m := smallMatrix()
	m.Rows["ACAG"][0] = 0.5
	m.Rows["ACAG"][1] = -1.25
	b.Reset()
	require.NoError(t, WriteTable(&b, m, smallMeta, NormPrecision))
	assert.Equal(t, tableNormExpect, b.String())
}

func TestReadTable(t *testing.T) {
	m, meta, e := ReadTable(strings.NewReader(tableNormExpect))
	require.NoError(t, e)
	assert.Equal(t, smallMeta, meta)
	require.Equal(t, 2, m.Width)
	require.Len(t, m.Keys, 2)
	assert.Equal(t, -1.25, m.Rows["ACAG"][1])
	assert.Equal(t, 2.0, m.Rows["ACGT"][0])
}

func TestReadTableErrors(t *testing.T) {
	type readTest struct {
		Name string
		In   string
		Err  error
	}
	tests := []readTest{
		readTest{"width", "ACAG\t1\t2\nACGT\t1\n", ErrWidth},
		readTest{"number", "ACAG\t1\tx\n", nil},
	}
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			_, _, e := ReadTable(strings.NewReader(test.In))
			require.Error(t, e)
			if test.Err != nil {
				assert.ErrorIs(t, e, test.Err)
			}
		})
	}
}

func TestReadTableTruncatedGzip(t *testing.T) {
	var b bytes.Buffer
	w := gzip.NewWriter(&b)
	require.NoError(t, WriteTable(w, smallMatrix(), smallMeta, RawPrecision))
	require.NoError(t, w.Flush())
	full := b.Len()
	require.NoError(t, w.Close())

	r, e := gzip.NewReader(bytes.NewReader(b.Bytes()[:full]))
	require.NoError(t, e)
	_, _, e = ReadTable(r)
	assert.ErrorIs(t, e, io.ErrUnexpectedEOF)
}

func TestTableRoundTrip(t *testing.T) {
	res, e := Accumulate(ReadVcf(strings.NewReader(vcfIn)), 10, 5)
	require.NoError(t, e)
	res.Source = "x.vcf"

	var b strings.Builder
	require.NoError(t, WriteTable(&b, res.Distant, res.Meta(), RawPrecision))
	m, meta, e := ReadTable(strings.NewReader(b.String()))
	require.NoError(t, e)
	assert.Equal(t, res.Meta(), meta)

	a := res.Distant.Flatten()
	require.Len(t, a, 1440)
	assert.Equal(t, a, m.Flatten())
}
