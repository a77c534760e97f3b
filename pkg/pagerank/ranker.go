package pagerank

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/lioia/corpus-pagerank/pkg/graph"
	"github.com/lioia/corpus-pagerank/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Method selects an estimator.
type Method string

const (
	MethodSample  Method = "sample"
	MethodIterate Method = "iterate"
)

// ParseMethod converts a method name, defaulting to MethodIterate when empty.
func ParseMethod(name string) (Method, error) {
	switch Method(name) {
	case "", MethodIterate:
		return MethodIterate, nil
	case MethodSample:
		return MethodSample, nil
	}
	return "", xerrors.Errorf("unknown method %q", name)
}

// Result is the outcome of one ranking run.
type Result struct {
	Method  Method
	Ranks   Ranks
	Steps   int // samples drawn or sweeps performed
	Runs    int // independent sampler runs averaged into Ranks
	Elapsed time.Duration
}

// Config encapsulates the settings of a Ranker.
type Config struct {
	// Estimator parameters.
	Options Options
	// Clock used to time runs. Defaults to the wall clock.
	Clock clock.Clock
	// The logger to use. Defaults to a discarding logger.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	if err := cfg.Options.Validate(); err != nil {
		return err
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Logger == nil {
		cfg.Logger = utils.DiscardLogger()
	}
	return nil
}

// OptionsFrom extracts the estimator parameters from a loaded configuration.
func OptionsFrom(cfg utils.Config) Options {
	return Options{
		Damping:   cfg.Damping,
		Samples:   cfg.Samples,
		Tolerance: cfg.Tolerance,
		MaxSweeps: cfg.MaxSweeps,
		Seed:      cfg.Seed,
	}
}

// Ranker runs the estimators with a fixed set of options. Its random source is
// seeded once from Options.Seed, so a Ranker must not be shared between
// goroutines.
type Ranker struct {
	cfg Config
	rng *rand.Rand
}

// NewRanker validates cfg and returns a Ranker.
func NewRanker(cfg Config) (*Ranker, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("ranker: config validation failed: %w", err)
	}
	return &Ranker{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Options.Seed)),
	}, nil
}

// Options returns the estimator parameters of r.
func (r *Ranker) Options() Options { return r.cfg.Options }

// Run dispatches to Sample or Iterate.
func (r *Ranker) Run(c *graph.Corpus, method Method) (*Result, error) {
	switch method {
	case MethodSample:
		return r.Sample(c)
	case MethodIterate:
		return r.Iterate(c)
	}
	return nil, xerrors.Errorf("unknown method %q", method)
}

// Sample runs the sampler with the ranker's random source.
func (r *Ranker) Sample(c *graph.Corpus) (*Result, error) {
	start := r.cfg.Clock.Now()
	ranks, err := Sample(c, r.cfg.Options.Damping, r.cfg.Options.Samples, r.rng)
	if err != nil {
		return nil, err
	}
	return r.finish(c, &Result{Method: MethodSample, Ranks: ranks, Steps: r.cfg.Options.Samples, Runs: 1}, start), nil
}

// Iterate runs power iteration.
func (r *Ranker) Iterate(c *graph.Corpus) (*Result, error) {
	start := r.cfg.Clock.Now()
	ranks, sweeps, err := IterateWithLimit(c, r.cfg.Options.Damping, r.cfg.Options.Tolerance, r.cfg.Options.MaxSweeps)
	if err != nil {
		return nil, err
	}
	return r.finish(c, &Result{Method: MethodIterate, Ranks: ranks, Steps: sweeps}, start), nil
}

// SampleRuns averages runs independent samplers, seeded Seed, Seed+1, ...,
// each walking in its own goroutine. Spread reports, per page, the largest
// deviation of a single run from the mean.
func (r *Ranker) SampleRuns(c *graph.Corpus, runs int) (*Result, Ranks, error) {
	if runs < 1 {
		return nil, nil, xerrors.Errorf("runs must be at least 1, got %d", runs)
	}
	start := r.cfg.Clock.Now()
	opts := r.cfg.Options

	total := utils.NewSafeMap[string, float64]()
	all := make([]Ranks, runs)
	errCh := make(chan error, runs)
	var wg sync.WaitGroup
	wg.Add(runs)
	for i := 0; i < runs; i++ {
		go func(i int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(opts.Seed + int64(i)))
			ranks, err := Sample(c, opts.Damping, opts.Samples, rng)
			if err != nil {
				errCh <- xerrors.Errorf("run %d: %w", i, err)
				return
			}
			all[i] = ranks
			total.Merge(ranks)
		}(i)
	}
	wg.Wait()
	close(errCh)
	var err error
	for runErr := range errCh {
		err = multierror.Append(err, runErr)
	}
	if err != nil {
		return nil, nil, err
	}

	mean := make(Ranks, c.Len())
	for page, sum := range total.Clone() {
		mean[page] = sum / float64(runs)
	}
	spread := make(Ranks, c.Len())
	for _, ranks := range all {
		for page, v := range ranks {
			if d := math.Abs(v - mean[page]); d > spread[page] {
				spread[page] = d
			}
		}
	}
	res := &Result{Method: MethodSample, Ranks: mean, Steps: opts.Samples, Runs: runs}
	return r.finish(c, res, start), spread, nil
}

func (r *Ranker) finish(c *graph.Corpus, res *Result, start time.Time) *Result {
	res.Elapsed = r.cfg.Clock.Now().Sub(start)
	r.cfg.Logger.WithFields(logrus.Fields{
		"method":  res.Method,
		"pages":   c.Len(),
		"steps":   res.Steps,
		"runs":    res.Runs,
		"elapsed": res.Elapsed,
	}).Debug("ranking complete")
	return res
}

