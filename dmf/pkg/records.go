package dmf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jgbaldwinbrown/csvh"
	"github.com/jgbaldwinbrown/fastats/pkg"
	"github.com/jgbaldwinbrown/fasttsv"
	"github.com/jgbaldwinbrown/iter"
	"github.com/jgbaldwinbrown/lscan/pkg"
)

var ErrMalformed = errors.New("malformed record")
var ErrFormat = errors.New("unknown input format")

const (
	FormatVcf = "vcf"
	FormatCut = "cut"
)

// An Snv is one variant record. The span is 0-based half-open, so a VCF POS
// of p is stored as [p-1, p).
type Snv struct {
	fastats.ChrSpan
	Ref string
	Alt string
}

func MakeSnv(chr string, pos int64, ref, alt string) Snv {
	return Snv{
		ChrSpan: fastats.ChrSpan{Chr: chr, Span: fastats.Span{Start: pos - 1, End: pos}},
		Ref:     ref,
		Alt:     alt,
	}
}

// Pos returns the 1-based position.
func (s Snv) Pos() int64 {
	return s.Start + 1
}

func IsComment(line []string) bool {
	return len(line) > 0 && strings.HasPrefix(line[0], "#")
}

func isBlank(line []string) bool {
	return len(line) == 0 || (len(line) == 1 && line[0] == "")
}

func parseSnv(chr, pos, ref, alt string) (Snv, error) {
	var p int64
	if _, e := csvh.Scan([]string{pos}, &p); e != nil {
		return Snv{}, fmt.Errorf("%w: position %q: %v", ErrMalformed, pos, e)
	}
	if p < 1 {
		return Snv{}, fmt.Errorf("%w: position %v < 1", ErrMalformed, p)
	}
	// Scanner fields are only valid until the next Scan.
	return MakeSnv(strings.Clone(chr), p, strings.Clone(ref), strings.Clone(alt)), nil
}

// ParseVcfLine reads CHROM, POS, REF and ALT from a split VCF data line.
func ParseVcfLine(line []string) (Snv, error) {
	if len(line) < 5 {
		return Snv{}, fmt.Errorf("%w: %v fields < 5", ErrMalformed, len(line))
	}
	return parseSnv(line[0], line[1], line[3], line[4])
}

// ParseCutLine reads a pre-extracted chrom, pos, ref, alt line.
func ParseCutLine(line []string) (Snv, error) {
	if len(line) != 4 {
		return Snv{}, fmt.Errorf("%w: %v fields != 4", ErrMalformed, len(line))
	}
	return parseSnv(line[0], line[1], line[2], line[3])
}

// ReadVcf streams the data lines of a VCF. Header lines are skipped; the
// first malformed data line ends iteration with an error.
func ReadVcf(r io.Reader) *iter.Iterator[Snv] {
	return &iter.Iterator[Snv]{Iteratef: func(yield func(Snv) error) error {
		s := fasttsv.NewScanner(r)
		i := 0
		for s.Scan() {
			i++
			line := s.Line()
			if IsComment(line) || isBlank(line) {
				continue
			}
			snv, e := ParseVcfLine(line)
			if e != nil {
				return fmt.Errorf("ReadVcf: line %v: %w", i, e)
			}
			if e := yield(snv); e != nil {
				return e
			}
		}
		if e := s.InScanner.Err(); e != nil {
			return fmt.Errorf("ReadVcf: line %v: %w", i+1, e)
		}
		return nil
	}}
}

var cutSplit = lscan.ByByte('\t')

// ReadCut streams tab-separated chrom, pos, ref, alt lines.
func ReadCut(r io.Reader) *iter.Iterator[Snv] {
	return &iter.Iterator[Snv]{Iteratef: func(yield func(Snv) error) error {
		s := bufio.NewScanner(r)
		s.Buffer([]byte{}, 1e9)
		var line []string
		i := 0
		for s.Scan() {
			i++
			if s.Text() == "" {
				continue
			}
			line = lscan.SplitByFunc(line[:0], s.Text(), cutSplit)
			if IsComment(line) {
				continue
			}
			snv, e := ParseCutLine(line)
			if e != nil {
				return fmt.Errorf("ReadCut: line %v: %w", i, e)
			}
			if e := yield(snv); e != nil {
				return e
			}
		}
		if e := s.Err(); e != nil {
			return fmt.Errorf("ReadCut: line %v: %w", i+1, e)
		}
		return nil
	}}
}

func Records(r io.Reader, format string) (*iter.Iterator[Snv], error) {
	switch format {
	case FormatVcf, "":
		return ReadVcf(r), nil
	case FormatCut:
		return ReadCut(r), nil
	default:
		return nil, fmt.Errorf("Records: %q: %w", format, ErrFormat)
	}
}

// OpenInput opens path, decompressing it if it ends in .gz. "-" is stdin.
func OpenInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	r, e := csvh.OpenMaybeGz(path)
	if e != nil {
		return nil, e
	}
	return r, nil
}
