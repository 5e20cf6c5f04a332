package dmf

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var ErrDuplicateID = errors.New("duplicate job id")

// ReadJobs decodes a YAML (or JSON) list of Configs and applies defaults.
func ReadJobs(r io.Reader) ([]Config, error) {
	h := handle("ReadJobs: %w")
	var cfgs []Config

	dec := yaml.NewDecoder(r)
	if e := dec.Decode(&cfgs); e != nil && !errors.Is(e, io.EOF) {
		return nil, h(e)
	}

	for i, c := range cfgs {
		cfgs[i] = c.WithDefaults()
	}
	return cfgs, nil
}

func ReadJobsPath(path string) ([]Config, error) {
	r, e := OpenInput(path)
	if e != nil {
		return nil, e
	}
	defer r.Close()

	return ReadJobs(r)
}

// RunMulti runs every job, at most threads at a time (unlimited if
// threads <= 0). The first failure cancels jobs that have not started.
func RunMulti(ctx context.Context, threads int, cfgs ...Config) ([]Summary, error) {
	ids := make(map[string]struct{}, len(cfgs))
	for _, c := range cfgs {
		if e := c.Validate(); e != nil {
			return nil, handle("RunMulti: job %v: %w")(c.ID, e)
		}
		if _, ok := ids[c.ID]; ok {
			return nil, handle("RunMulti: job %v: %w")(c.ID, ErrDuplicateID)
		}
		ids[c.ID] = struct{}{}
	}

	sums := make([]Summary, len(cfgs))
	g, ctx2 := errgroup.WithContext(ctx)
	if threads > 0 {
		g.SetLimit(threads)
	}
	for i, c := range cfgs {
		i := i
		c := c
		g.Go(func() error {
			var e error
			sums[i], e = Run(ctx2, c)
			return e
		})
	}
	if e := g.Wait(); e != nil {
		return sums, e
	}
	return sums, nil
}

func FullMulti() {
	jobsp := flag.String("jobs", "-", "YAML or JSON list of jobs (default stdin).")
	threads := flag.Int("t", -1, "Threads to use (default infinite).")
	flag.Parse()

	cfgs, e := ReadJobsPath(*jobsp)
	if e != nil {
		log.Fatal(e)
	}
	if len(cfgs) == 0 {
		log.Fatal(ErrMissingArg)
	}
	for _, c := range cfgs {
		if c.File == "-" {
			log.Fatalf("job %v: multi-job runs cannot read records from stdin", c.ID)
		}
	}

	sums, e := RunMulti(context.Background(), *threads, cfgs...)
	if e != nil {
		log.Fatal(e)
	}
	log.Printf("finished %v jobs\n", len(sums))
}
