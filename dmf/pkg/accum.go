package dmf

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jgbaldwinbrown/iter"
)

const (
	DefaultL = 120
	DefaultC = 20
)

var ErrBadLength = errors.New("fingerprint length must be positive")
var ErrBadCutoff = errors.New("too-close cutoff must be positive")

// Standard chromosomes start with a digit, optionally after "chr".
var chromRe = regexp.MustCompile(`^(chr)?\d`)
var baseRe = regexp.MustCompile(`(?i)^[ACGT]$`)

func ChromOk(chr string) bool {
	return chromRe.MatchString(chr)
}

// SubKey returns the uppercase two-letter substitution for a single-base
// ref/alt pair, or false if either is not one of A, C, G, T or they match.
func SubKey(ref, alt string) (string, bool) {
	if !baseRe.MatchString(ref) || !baseRe.MatchString(alt) {
		return "", false
	}
	key := strings.ToUpper(ref + alt)
	if key[0] == key[1] {
		return "", false
	}
	return key, true
}

type Summary struct {
	Source     string `json:"source"`
	Pairs      int64  `json:"snv_pairs"`
	ClosePairs int64  `json:"close_pairs"`
	L          int    `json:"vector_length"`
	C          int    `json:"too_close_cutoff"`

	Records   int64 `json:"records"`
	Filtered  int64 `json:"filtered"`
	Unordered int64 `json:"unordered"`
	Chroms    int64 `json:"chromosome_runs"`
}

type Result struct {
	Distant Matrix
	Close   Matrix
	Summary
}

type cursor struct {
	chr string
	pos int64
	key string
}

// An Accumulator tabulates consecutive same-chromosome SNV pairs. Records
// must arrive in chromosome, then position, order; it keeps only the most
// recent accepted record.
type Accumulator struct {
	res  Result
	prev cursor
	seen bool
}

func NewAccumulator(l, c int) (*Accumulator, error) {
	if l < 1 {
		return nil, ErrBadLength
	}
	if c < 1 {
		return nil, ErrBadCutoff
	}
	keys := PairKeys()
	a := new(Accumulator)
	a.res.Distant = NewMatrix(keys, l)
	a.res.Close = NewMatrix(keys, c)
	a.res.L = l
	a.res.C = c
	return a, nil
}

// Add consumes one record. Records on non-standard chromosomes or that are
// not single-base substitutions are dropped without moving the cursor.
func (a *Accumulator) Add(s Snv) {
	if !ChromOk(s.Chr) {
		a.res.Filtered++
		return
	}
	key, ok := SubKey(s.Ref, s.Alt)
	if !ok {
		a.res.Filtered++
		return
	}
	a.res.Records++
	pos := s.Pos()

	if !a.seen || a.prev.chr != s.Chr {
		a.res.Chroms++
	} else {
		a.pair(pos-a.prev.pos-1, a.prev.key+key)
	}

	a.prev = cursor{chr: s.Chr, pos: pos, key: key}
	a.seen = true
}

func (a *Accumulator) pair(gap int64, pairkey string) {
	if gap < 0 {
		a.res.Unordered++
		return
	}
	a.res.Pairs++
	if gap < int64(a.res.C) {
		a.res.ClosePairs++
		a.res.Close.Inc(pairkey, int(gap))
		return
	}
	a.res.Distant.Inc(pairkey, int(gap%int64(a.res.L)))
}

func (a *Accumulator) Result() Result {
	return a.res
}

// Accumulate runs a full pass over it. Any error from it aborts the run.
func Accumulate(it iter.Iter[Snv], l, c int) (Result, error) {
	h := handle("Accumulate: %w")
	a, e := NewAccumulator(l, c)
	if e != nil {
		return Result{}, h(e)
	}
	e = it.Iterate(func(s Snv) error {
		a.Add(s)
		return nil
	})
	if e != nil {
		return Result{}, h(e)
	}
	return a.Result(), nil
}
