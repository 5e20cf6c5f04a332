package dmf

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/jgbaldwinbrown/csvh"
)

var ErrMissingArg = errors.New("missing argument")

// Config describes one fingerprinting run. Outputs are written to
// ID+".out", ID+".close" and ID+".outn" (and ID+".json" with Json).
type Config struct {
	ID        string `yaml:"id" json:"id"`
	File      string `yaml:"file" json:"file"`
	Format    string `yaml:"format" json:"format"`
	L         int    `yaml:"l" json:"l"`
	C         int    `yaml:"c" json:"c"`
	Gzip      bool   `yaml:"gzip" json:"gzip"`
	Json      bool   `yaml:"json" json:"json"`
	Propagate bool   `yaml:"nan" json:"nan"`
}

// WithDefaults fills in zero L, C and Format.
func (c Config) WithDefaults() Config {
	if c.L == 0 {
		c.L = DefaultL
	}
	if c.C == 0 {
		c.C = DefaultC
	}
	if c.Format == "" {
		c.Format = FormatVcf
	}
	return c
}

func (c Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: id", ErrMissingArg)
	}
	if c.File == "" {
		return fmt.Errorf("%w: file", ErrMissingArg)
	}
	if c.L < 1 {
		return fmt.Errorf("L %v: %w", c.L, ErrBadLength)
	}
	if c.C < 1 {
		return fmt.Errorf("C %v: %w", c.C, ErrBadCutoff)
	}
	if c.Format != FormatVcf && c.Format != FormatCut {
		return fmt.Errorf("%q: %w", c.Format, ErrFormat)
	}
	return nil
}

func (c Config) Policy() ZeroVariance {
	if c.Propagate {
		return Propagate
	}
	return ZeroFill
}

func (c Config) OutPath(suffix string) string {
	p := c.ID + suffix
	if c.Gzip {
		p += ".gz"
	}
	return p
}

func (c Config) Outputs() []string {
	outs := []string{c.OutPath(".out"), c.OutPath(".close"), c.OutPath(".outn")}
	if c.Json {
		outs = append(outs, c.OutPath(".json"))
	}
	return outs
}

// Fingerprint reads the records of cfg.File and accumulates them.
func Fingerprint(cfg Config) (res Result, err error) {
	h := handle("Fingerprint: %w")
	r, e := OpenInput(cfg.File)
	if e != nil {
		return res, h(e)
	}
	defer func() { csvh.DeferE(&err, r.Close()) }()

	it, e := Records(r, cfg.Format)
	if e != nil {
		return res, h(e)
	}
	res, e = Accumulate(it, cfg.L, cfg.C)
	if e != nil {
		return res, h(e)
	}
	res.Source = cfg.File
	return res, nil
}

func WriteSummaryPath(path string, s Summary) (err error) {
	w, e := csvh.CreateMaybeGz(path)
	if e != nil {
		return e
	}
	defer func() { csvh.DeferE(&err, w.Close()) }()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(s)
}

// WriteOutputs writes the raw tables, normalizes res.Distant in place, then
// writes the normalized table. res.Distant holds Z-scores afterwards.
func WriteOutputs(cfg Config, res Result) error {
	h := handle("WriteOutputs: %w")
	meta := res.Meta()

	if e := WriteTablePath(cfg.OutPath(".out"), res.Distant, meta, RawPrecision); e != nil {
		return h(e)
	}
	if e := WriteTablePath(cfg.OutPath(".close"), res.Close, meta, RawPrecision); e != nil {
		return h(e)
	}

	d, e := Normalize(&res.Distant, cfg.Policy())
	if e != nil {
		return h(e)
	}
	if !d.Empty() {
		log.Printf("%v: zero-variance columns %v; rows %v\n", cfg.ID, d.Cols, d.Rows)
	}

	if e := WriteTablePath(cfg.OutPath(".outn"), res.Distant, meta, NormPrecision); e != nil {
		return h(e)
	}
	if cfg.Json {
		if e := WriteSummaryPath(cfg.OutPath(".json"), res.Summary); e != nil {
			return h(e)
		}
	}
	return nil
}

// Run fingerprints one genome and writes all of its outputs.
func Run(ctx context.Context, cfg Config) (Summary, error) {
	h := handle("Run: %w")
	if e := cfg.Validate(); e != nil {
		return Summary{}, h(e)
	}
	if e := ctx.Err(); e != nil {
		return Summary{}, h(e)
	}

	log.Printf("%v: reading %v\n", cfg.ID, cfg.File)
	res, e := Fingerprint(cfg)
	if e != nil {
		return Summary{}, h(e)
	}
	log.Printf("%v: %v records; %v filtered; %v pairs; %v close; %v out of order\n",
		cfg.ID, res.Records, res.Filtered, res.Pairs, res.ClosePairs, res.Unordered,
	)

	if e := ctx.Err(); e != nil {
		return res.Summary, h(e)
	}
	if e := WriteOutputs(cfg, res); e != nil {
		return res.Summary, h(e)
	}
	return res.Summary, nil
}

func GetFlags() (Config, error) {
	var c Config
	flag.StringVar(&c.ID, "id", "", "Identifier for the job; output files will use this as base (required).")
	flag.StringVar(&c.File, "file", "", "Input file, the genome as VCF (.gz ok, - for stdin) (required).")
	flag.StringVar(&c.Format, "f", FormatVcf, "Input format: vcf, or cut for tab-separated chrom, pos, ref, alt.")
	flag.IntVar(&c.L, "L", DefaultL, "Fingerprint length.")
	flag.IntVar(&c.C, "C", DefaultC, "Too close cutoff.")
	flag.BoolVar(&c.Gzip, "gz", false, "Gzip all outputs.")
	flag.BoolVar(&c.Json, "j", false, "Also write a JSON run summary.")
	flag.BoolVar(&c.Propagate, "nan", false, "Leave NaN values where a normalized row or column has zero variance (default fills zeros).")
	flag.Parse()

	return c, c.Validate()
}

func FullDmf() {
	cfg, e := GetFlags()
	if e != nil {
		flag.Usage()
		log.Fatal(e)
	}

	if _, e := Run(context.Background(), cfg); e != nil {
		log.Fatal(e)
	}
}
