package fpcompare

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/jgbaldwinbrown/csvh"
	"github.com/jgbaldwinbrown/dmf/dmf/pkg"
)

var ErrSetSize = errors.New("value count is not a multiple of fingerprint length")
var ErrLengthMismatch = errors.New("fingerprint lengths differ")
var ErrEmptyTable = errors.New("fingerprint table has no values")

// MaxLength bounds the fingerprint length a binary set header may declare.
const MaxLength = 1 << 24

// Every fingerprint table starts with this line.
var tablePrefix = []byte("#source\t")

func handle(format string) func(...any) error {
	return func(args ...any) error {
		return fmt.Errorf(format, args...)
	}
}

// A Set holds fingerprints of equal length.
type Set struct {
	Length int
	Names  []string
	Prints [][]float64
}

func (s *Set) Add(name string, fp []float64) error {
	if len(s.Prints) == 0 && s.Length == 0 {
		s.Length = len(fp)
	}
	if len(fp) != s.Length {
		return fmt.Errorf("Add: %v: len %v != %v: %w", name, len(fp), s.Length, ErrLengthMismatch)
	}
	s.Names = append(s.Names, name)
	s.Prints = append(s.Prints, fp)
	return nil
}

// Append adds every fingerprint of o to s.
func (s *Set) Append(o Set) error {
	for i, p := range o.Prints {
		if e := s.Add(o.Names[i], p); e != nil {
			return e
		}
	}
	return nil
}

// FromTable makes a one-fingerprint set from a fingerprint table, flattening
// its rows in key order.
func FromTable(m dmf.Matrix, meta dmf.Meta) (Set, error) {
	if len(m.Keys) == 0 || m.Width == 0 {
		return Set{}, fmt.Errorf("FromTable: %v: %v rows of width %v: %w", meta.Source, len(m.Keys), m.Width, ErrEmptyTable)
	}
	var s Set
	s.Length = len(m.Keys) * m.Width
	s.Names = []string{meta.Source}
	s.Prints = [][]float64{m.Flatten()}
	return s, nil
}

// ReadBinarySet reads a little-endian int32 fingerprint length followed by
// any number of int32 fingerprints of that length.
func ReadBinarySet(r io.Reader, name string) (Set, error) {
	h := handle("ReadBinarySet: %w")
	var length int32
	if e := binary.Read(r, binary.LittleEndian, &length); e != nil {
		return Set{}, h(e)
	}
	if length < 1 || length > MaxLength {
		return Set{}, h(fmt.Errorf("length %v: %w", length, ErrSetSize))
	}

	s := Set{Length: int(length)}
	buf := make([]int32, length)
	for i := 0; ; i++ {
		e := binary.Read(r, binary.LittleEndian, buf)
		if errors.Is(e, io.EOF) {
			break
		}
		if errors.Is(e, io.ErrUnexpectedEOF) {
			return s, h(fmt.Errorf("fingerprint %v: %w", i+1, ErrSetSize))
		}
		if e != nil {
			return s, h(e)
		}

		fp := make([]float64, length)
		for j, v := range buf {
			fp[j] = float64(v)
		}
		s.Names = append(s.Names, fmt.Sprintf("%v:%v", name, i+1))
		s.Prints = append(s.Prints, fp)
	}
	return s, nil
}

// WriteBinarySet writes s in the format ReadBinarySet reads. Values are
// rounded to the nearest integer.
func WriteBinarySet(w io.Writer, s Set) error {
	h := handle("WriteBinarySet: %w")
	bw := bufio.NewWriter(w)
	if e := binary.Write(bw, binary.LittleEndian, int32(s.Length)); e != nil {
		return h(e)
	}
	buf := make([]int32, s.Length)
	for _, p := range s.Prints {
		if len(p) != s.Length {
			return h(ErrLengthMismatch)
		}
		for j, v := range p {
			buf[j] = int32(math.Round(v))
		}
		if e := binary.Write(bw, binary.LittleEndian, buf); e != nil {
			return h(e)
		}
	}
	if e := bw.Flush(); e != nil {
		return h(e)
	}
	return nil
}

// ReadSet reads a fingerprint table if r starts with a "#source" line, else a
// binary set.
func ReadSet(r io.Reader, name string) (Set, error) {
	br := bufio.NewReader(r)
	first, e := br.Peek(len(tablePrefix))
	if len(first) == 0 {
		return Set{}, handle("ReadSet: %v: %w")(name, e)
	}
	if !bytes.Equal(first, tablePrefix) {
		return ReadBinarySet(br, name)
	}

	m, meta, e := dmf.ReadTable(br)
	if e != nil {
		return Set{}, handle("ReadSet: %v: %w")(name, e)
	}
	if meta.Source == "" {
		meta.Source = name
	}
	return FromTable(m, meta)
}

func LoadSet(path string) (Set, error) {
	r, e := csvh.OpenMaybeGz(path)
	if e != nil {
		return Set{}, e
	}
	defer r.Close()
	return ReadSet(r, path)
}

func WriteBinarySetPath(path string, s Set) (err error) {
	w, e := csvh.CreateMaybeGz(path)
	if e != nil {
		return e
	}
	defer func() { csvh.DeferE(&err, w.Close()) }()
	return WriteBinarySet(w, s)
}
