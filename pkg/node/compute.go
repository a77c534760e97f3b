package node

import (
	"github.com/hashicorp/go-multierror"
	"github.com/lioia/corpus-pagerank/pkg/graph"
	"github.com/lioia/corpus-pagerank/pkg/pagerank"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Limits bounds the work a single network request may ask for. Zero fields
// take the value of DefaultLimits.
type Limits struct {
	MaxSamples int // walk length of one sampler run
	MaxRuns    int // independent sampler runs
	MaxSweeps  int // sweep cap of the iteration
}

// DefaultLimits allows ten million samples, 64 runs and the default sweep cap.
func DefaultLimits() Limits {
	return Limits{
		MaxSamples: 10_000_000,
		MaxRuns:    64,
		MaxSweeps:  pagerank.DefaultMaxSweeps,
	}
}

func (l Limits) orDefaults() Limits {
	d := DefaultLimits()
	if l.MaxSamples <= 0 {
		l.MaxSamples = d.MaxSamples
	}
	if l.MaxRuns <= 0 {
		l.MaxRuns = d.MaxRuns
	}
	if l.MaxSweeps <= 0 {
		l.MaxSweeps = d.MaxSweeps
	}
	return l
}

// check applies the limits relevant to method.
func (l Limits) check(method pagerank.Method, opts pagerank.Options, runs int) error {
	l = l.orDefaults()
	var err error
	switch method {
	case pagerank.MethodSample:
		if opts.Samples > l.MaxSamples {
			err = multierror.Append(err, xerrors.Errorf("samples %d above limit %d: %w", opts.Samples, l.MaxSamples, ErrBadRequest))
		}
		if runs > l.MaxRuns {
			err = multierror.Append(err, xerrors.Errorf("runs %d above limit %d: %w", runs, l.MaxRuns, ErrBadRequest))
		}
	case pagerank.MethodIterate:
		if opts.MaxSweeps > l.MaxSweeps {
			err = multierror.Append(err, xerrors.Errorf("max sweeps %d above limit %d: %w", opts.MaxSweeps, l.MaxSweeps, ErrBadRequest))
		}
	}
	return err
}

// Compute validates req and runs the requested estimator. Links must satisfy
// the strict corpus contract (no self-links, no unknown targets). Errors
// caused by the request itself, including parameters above limits, wrap
// ErrBadRequest.
func Compute(req Request, limits Limits, logger *logrus.Entry) (*Response, error) {
	if err := graph.Validate(req.Links); err != nil {
		return nil, xerrors.Errorf("%v: %w", err, ErrBadRequest)
	}
	c, err := graph.New(req.Links)
	if err != nil {
		return nil, xerrors.Errorf("%v: %w", err, ErrBadRequest)
	}
	return ComputeCorpus(req, c, limits, logger)
}

// ComputeCorpus is Compute for an already built corpus; req.Links is ignored.
func ComputeCorpus(req Request, c *graph.Corpus, limits Limits, logger *logrus.Entry) (*Response, error) {
	method, err := pagerank.ParseMethod(req.Method)
	if err != nil {
		return nil, xerrors.Errorf("%v: %w", err, ErrBadRequest)
	}
	if req.Runs < 0 {
		return nil, xerrors.Errorf("runs must not be negative: %w", ErrBadRequest)
	}
	opts := req.Options()
	if err := limits.check(method, opts, req.Runs); err != nil {
		return nil, err
	}
	if req.ID == "" {
		if req.ID, err = gonanoid.New(); err != nil {
			return nil, err
		}
	}
	ranker, err := pagerank.NewRanker(pagerank.Config{Options: opts, Logger: logger})
	if err != nil {
		return nil, xerrors.Errorf("%v: %w", err, ErrBadRequest)
	}

	var res *pagerank.Result
	if method == pagerank.MethodSample && req.Runs > 1 {
		res, _, err = ranker.SampleRuns(c, req.Runs)
	} else {
		res, err = ranker.Run(c, method)
	}
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.WithFields(logrus.Fields{"id": req.ID, "method": method, "pages": c.Len()}).Info("ranked corpus")
	}
	return &Response{
		ID:      req.ID,
		Method:  string(res.Method),
		Ranks:   res.Ranks,
		Steps:   res.Steps,
		Runs:    res.Runs,
		Elapsed: res.Elapsed,
	}, nil
}
