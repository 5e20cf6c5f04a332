package fpcompare

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// The default minimum correlation; it is below -1, so everything is kept.
const DefaultMin = -2.0

// A Hit is the correlation between query fingerprint Query and target
// fingerprint Target, both numbered from 1.
type Hit struct {
	Query  int   `json:"query"`
	Target int   `json:"target"`
	R      Float `json:"r"`
}

func Pearson(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("Pearson: %v != %v: %w", len(a), len(b), ErrLengthMismatch)
	}
	return stats.Correlation(a, b)
}

// SelfCompare correlates every pair of fingerprints in s once, i before j.
func SelfCompare(s Set, min float64) ([]Hit, error) {
	var hits []Hit
	for i, q := range s.Prints {
		for j := i + 1; j < len(s.Prints); j++ {
			r, e := Pearson(q, s.Prints[j])
			if e != nil {
				return nil, handle("SelfCompare: %w")(e)
			}
			if r >= min {
				hits = append(hits, Hit{i + 1, j + 1, Float(r)})
			}
		}
	}
	return hits, nil
}

// Compare correlates every query fingerprint with every db fingerprint.
func Compare(query, db Set, min float64) ([]Hit, error) {
	h := handle("Compare: %w")
	if query.Length != db.Length {
		return nil, h(fmt.Errorf("%v != %v: %w", query.Length, db.Length, ErrLengthMismatch))
	}

	var hits []Hit
	for i, q := range query.Prints {
		for j, t := range db.Prints {
			r, e := Pearson(q, t)
			if e != nil {
				return nil, h(e)
			}
			if r >= min {
				hits = append(hits, Hit{i + 1, j + 1, Float(r)})
			}
		}
	}
	return hits, nil
}

// CompareAll runs Compare against each db concurrently; results come back in
// db order.
func CompareAll(ctx context.Context, threads int, query Set, min float64, dbs ...Set) ([][]Hit, error) {
	out := make([][]Hit, len(dbs))
	g, ctx2 := errgroup.WithContext(ctx)
	if threads > 0 {
		g.SetLimit(threads)
	}
	for i, db := range dbs {
		i := i
		db := db
		g.Go(func() error {
			if e := ctx2.Err(); e != nil {
				return e
			}
			var e error
			out[i], e = Compare(query, db, min)
			return e
		})
	}
	if e := g.Wait(); e != nil {
		return nil, e
	}
	return out, nil
}

func WriteHits(w io.Writer, hits []Hit) error {
	bw := bufio.NewWriter(w)
	for _, hit := range hits {
		if _, e := fmt.Fprintf(bw, "%d\t%d\t%.6f\n", hit.Query, hit.Target, float64(hit.R)); e != nil {
			return e
		}
	}
	return bw.Flush()
}

func WriteHitsJson(w io.Writer, hits []Hit) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, hit := range hits {
		if e := enc.Encode(hit); e != nil {
			return e
		}
	}
	return bw.Flush()
}
