package dmf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jgbaldwinbrown/csvh"
	"github.com/jgbaldwinbrown/fasttsv"
)

const (
	RawPrecision  = 0
	NormPrecision = 3
)

// Meta is the comment preamble of every fingerprint table.
type Meta struct {
	Source string
	Pairs  int64
	L      int
	C      int
}

func (s Summary) Meta() Meta {
	return Meta{Source: s.Source, Pairs: s.Pairs, L: s.L, C: s.C}
}

func FprintMeta(w io.Writer, meta Meta) error {
	_, e := fmt.Fprintf(w, "#source\t%v\n#SNVpairs\t%v\n#vectorLengths\t%v\n#tooCloseCutoff\t%v\n",
		meta.Source, meta.Pairs, meta.L, meta.C,
	)
	return e
}

// WriteTable writes meta and then one line per key, in sorted key order, with
// values printed to prec decimal places.
func WriteTable(w io.Writer, m Matrix, meta Meta, prec int) error {
	h := handle("WriteTable: %w")
	bw := bufio.NewWriter(w)

	if e := FprintMeta(bw, meta); e != nil {
		return h(e)
	}
	for _, k := range m.SortedKeys() {
		if _, e := io.WriteString(bw, k); e != nil {
			return h(e)
		}
		for _, v := range m.Rows[k] {
			if _, e := fmt.Fprintf(bw, "\t%.*f", prec, v); e != nil {
				return h(e)
			}
		}
		if _, e := io.WriteString(bw, "\n"); e != nil {
			return h(e)
		}
	}
	if e := bw.Flush(); e != nil {
		return h(e)
	}
	return nil
}

func WriteTablePath(path string, m Matrix, meta Meta, prec int) (err error) {
	w, e := csvh.CreateMaybeGz(path)
	if e != nil {
		return e
	}
	defer func() { csvh.DeferE(&err, w.Close()) }()

	return WriteTable(w, m, meta, prec)
}

func parseMeta(meta *Meta, line []string) error {
	if len(line) < 2 {
		return nil
	}
	var e error
	var n int64
	switch line[0] {
	case "#source":
		meta.Source = strings.Clone(line[1])
	case "#SNVpairs":
		_, e = csvh.Scan(line[1:2], &meta.Pairs)
	case "#vectorLengths":
		_, e = csvh.Scan(line[1:2], &n)
		meta.L = int(n)
	case "#tooCloseCutoff":
		_, e = csvh.Scan(line[1:2], &n)
		meta.C = int(n)
	}
	return e
}

// ReadTable parses a table written by WriteTable. Unknown comment lines are
// ignored.
func ReadTable(r io.Reader) (Matrix, Meta, error) {
	h := handle("ReadTable: %w")
	var m Matrix
	var meta Meta

	s := fasttsv.NewScanner(r)
	i := 0
	for s.Scan() {
		i++
		line := s.Line()
		if isBlank(line) {
			continue
		}
		if IsComment(line) {
			if e := parseMeta(&meta, line); e != nil {
				return m, meta, h(fmt.Errorf("line %v: %w", i, e))
			}
			continue
		}

		row := make([]float64, 0, len(line)-1)
		for _, field := range line[1:] {
			v, e := strconv.ParseFloat(field, 64)
			if e != nil {
				return m, meta, h(fmt.Errorf("line %v: %w", i, e))
			}
			row = append(row, v)
		}
		if e := m.AddRow(strings.Clone(line[0]), row); e != nil {
			return m, meta, h(fmt.Errorf("line %v: %w", i, e))
		}
	}
	if e := s.InScanner.Err(); e != nil {
		return m, meta, h(fmt.Errorf("line %v: %w", i+1, e))
	}
	return m, meta, nil
}

func ReadTablePath(path string) (Matrix, Meta, error) {
	r, e := csvh.OpenMaybeGz(path)
	if e != nil {
		return Matrix{}, Meta{}, e
	}
	defer r.Close()
	return ReadTable(r)
}
