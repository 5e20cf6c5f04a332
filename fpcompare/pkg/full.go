package fpcompare

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
)

var ErrMissingArg = errors.New("missing argument")

type Flags struct {
	Min     float64
	Threads int
	Json    bool
	Pack    string
	Paths   []string
}

func GetFlags() (Flags, error) {
	var f Flags
	flag.Float64Var(&f.Min, "t", DefaultMin, "Only print correlations at or above this threshold.")
	flag.IntVar(&f.Threads, "threads", -1, "Threads to use (default infinite).")
	flag.BoolVar(&f.Json, "j", false, "Output as JSON.")
	flag.StringVar(&f.Pack, "pack", "", "Instead of comparing, pack all inputs into one binary fingerprint set at this path.")
	flag.Usage = func() {
		log.Printf("Usage: %v [-t threshold] <queryFile> [<dbFile1> ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	f.Paths = flag.Args()
	if len(f.Paths) < 1 {
		return f, ErrMissingArg
	}
	return f, nil
}

func LoadSets(paths ...string) ([]Set, error) {
	sets := make([]Set, 0, len(paths))
	for _, p := range paths {
		s, e := LoadSet(p)
		if e != nil {
			return nil, e
		}
		sets = append(sets, s)
	}
	return sets, nil
}

func Pack(out string, paths ...string) error {
	sets, e := LoadSets(paths...)
	if e != nil {
		return e
	}
	var all Set
	for _, s := range sets {
		if e := all.Append(s); e != nil {
			return e
		}
	}
	return WriteBinarySetPath(out, all)
}

// Run compares the first path against each of the rest, or against itself if
// it is alone.
func Run(ctx context.Context, w io.Writer, f Flags) error {
	h := handle("Run: %w")
	sets, e := LoadSets(f.Paths...)
	if e != nil {
		return h(e)
	}

	write := WriteHits
	if f.Json {
		write = WriteHitsJson
	}

	if len(sets) == 1 {
		hits, e := SelfCompare(sets[0], f.Min)
		if e != nil {
			return h(e)
		}
		return write(w, hits)
	}

	all, e := CompareAll(ctx, f.Threads, sets[0], f.Min, sets[1:]...)
	if e != nil {
		return h(e)
	}
	for _, hits := range all {
		if e := write(w, hits); e != nil {
			return h(e)
		}
	}
	return nil
}

func FullCompare() {
	f, e := GetFlags()
	if e != nil {
		flag.Usage()
		log.Fatal(e)
	}

	if f.Pack != "" {
		if e := Pack(f.Pack, f.Paths...); e != nil {
			log.Fatal(e)
		}
		return
	}

	if e := Run(context.Background(), os.Stdout, f); e != nil {
		log.Fatal(e)
	}
}
