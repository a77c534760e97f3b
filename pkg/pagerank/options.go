package pagerank

import (
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

const (
	// DefaultDamping is the conventional probability of following a link.
	DefaultDamping = 0.85
	// DefaultSamples is the walk length used by the sampler.
	DefaultSamples = 10000
	// DefaultTolerance is the per-page convergence threshold of Iterate.
	DefaultTolerance = 0.001
	// DefaultMaxSweeps bounds the number of sweeps performed by Iterate.
	DefaultMaxSweeps = 10000
)

var (
	ErrInvalidDamping   = xerrors.New("damping must be in (0, 1)")
	ErrInvalidSamples   = xerrors.New("sample count must be at least 1")
	ErrInvalidTolerance = xerrors.New("tolerance must be positive")
	ErrInvalidMaxSweeps = xerrors.New("max sweeps must be at least 1")
	ErrNilRand          = xerrors.New("random source is nil")
	ErrNilCorpus        = xerrors.New("corpus is nil")
	ErrNotConverged     = xerrors.New("ranks did not converge")
)

// Options holds the parameters shared by both estimators.
type Options struct {
	Damping   float64 // probability of following an out-link
	Samples   int     // walk length for Sample
	Tolerance float64 // per-page convergence threshold for Iterate
	MaxSweeps int     // upper bound on Iterate sweeps
	Seed      int64   // seed of the sampler's random source
}

// DefaultOptions returns damping 0.85, 10000 samples, tolerance 0.001 and a
// cap of 10000 sweeps, with seed 1.
func DefaultOptions() Options {
	return Options{
		Damping:   DefaultDamping,
		Samples:   DefaultSamples,
		Tolerance: DefaultTolerance,
		MaxSweeps: DefaultMaxSweeps,
		Seed:      1,
	}
}

// Validate reports every invalid field at once.
func (o Options) Validate() error {
	var err error
	if e := checkDamping(o.Damping); e != nil {
		err = multierror.Append(err, e)
	}
	if e := checkSamples(o.Samples); e != nil {
		err = multierror.Append(err, e)
	}
	if e := checkTolerance(o.Tolerance); e != nil {
		err = multierror.Append(err, e)
	}
	if o.MaxSweeps < 1 {
		err = multierror.Append(err, xerrors.Errorf("%d: %w", o.MaxSweeps, ErrInvalidMaxSweeps))
	}
	return err
}

func checkDamping(damping float64) error {
	// written so that NaN is rejected too
	if !(damping > 0 && damping < 1) {
		return xerrors.Errorf("%v: %w", damping, ErrInvalidDamping)
	}
	return nil
}

func checkSamples(samples int) error {
	if samples < 1 {
		return xerrors.Errorf("%d: %w", samples, ErrInvalidSamples)
	}
	return nil
}

func checkTolerance(tolerance float64) error {
	if !(tolerance > 0) {
		return xerrors.Errorf("%v: %w", tolerance, ErrInvalidTolerance)
	}
	return nil
}
