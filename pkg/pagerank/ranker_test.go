package pagerank

import (
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock/testclock"
	"github.com/lioia/corpus-pagerank/pkg/utils"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/xerrors"
)

type RankerSuite struct {
	suite.Suite
	clock *testclock.Clock
}

func TestRankerSuite(t *testing.T) {
	suite.Run(t, new(RankerSuite))
}

func (s *RankerSuite) SetupTest() {
	s.clock = testclock.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

func (s *RankerSuite) ranker(opts Options) *Ranker {
	r, err := NewRanker(Config{Options: opts, Clock: s.clock})
	s.Require().NoError(err)
	return r
}

func (s *RankerSuite) TestDefaultsAreValid() {
	s.Require().NoError(DefaultOptions().Validate())
}

func (s *RankerSuite) TestValidateReportsEveryField() {
	err := Options{Damping: 2, Samples: 0, Tolerance: -1, MaxSweeps: 0}.Validate()
	s.Require().Error(err)
	merr, ok := err.(*multierror.Error)
	s.Require().True(ok)
	s.Require().Len(merr.Errors, 4)
	s.Require().True(xerrors.Is(err, ErrInvalidDamping))
	s.Require().True(xerrors.Is(err, ErrInvalidSamples))
	s.Require().True(xerrors.Is(err, ErrInvalidTolerance))
	s.Require().True(xerrors.Is(err, ErrInvalidMaxSweeps))
}

func (s *RankerSuite) TestNewRankerRejectsInvalidOptions() {
	opts := DefaultOptions()
	opts.Damping = 1
	_, err := NewRanker(Config{Options: opts})
	s.Require().True(xerrors.Is(err, ErrInvalidDamping))
}

func (s *RankerSuite) TestParseMethod() {
	m, err := ParseMethod("")
	s.Require().NoError(err)
	s.Require().Equal(MethodIterate, m)
	m, err = ParseMethod("sample")
	s.Require().NoError(err)
	s.Require().Equal(MethodSample, m)
	_, err = ParseMethod("matrix")
	s.Require().Error(err)
}

func (s *RankerSuite) TestIterate() {
	res, err := s.ranker(DefaultOptions()).Run(threePages(s.T()), MethodIterate)
	s.Require().NoError(err)
	s.Require().Equal(MethodIterate, res.Method)
	s.Require().Greater(res.Steps, 0)
	s.Require().Equal("2.html", res.Ranks.Top())
	s.Require().Equal(time.Duration(0), res.Elapsed)
}

func (s *RankerSuite) TestSampleUsesSeed() {
	opts := DefaultOptions()
	opts.Seed = 99
	opts.Samples = 2000
	c := withDangling(s.T())

	first, err := s.ranker(opts).Sample(c)
	s.Require().NoError(err)
	again, err := s.ranker(opts).Sample(c)
	s.Require().NoError(err)
	s.Require().Equal(first.Ranks, again.Ranks)
	s.Require().Equal(2000, first.Steps)
	s.Require().Equal(1, first.Runs)
}

func (s *RankerSuite) TestSampleRuns() {
	opts := DefaultOptions()
	opts.Samples = 2000
	c := threePages(s.T())

	res, spread, err := s.ranker(opts).SampleRuns(c, 4)
	s.Require().NoError(err)
	s.Require().Equal(4, res.Runs)
	s.Require().InDelta(1.0, res.Ranks.Sum(), 1e-6)
	s.Require().Len(spread, 3)
	for _, p := range c.Pages() {
		s.Require().GreaterOrEqual(spread[p], 0.0)
	}

	// every run is seeded independently of goroutine scheduling
	again, _, err := s.ranker(opts).SampleRuns(c, 4)
	s.Require().NoError(err)
	for _, p := range c.Pages() {
		s.Require().InDelta(res.Ranks[p], again.Ranks[p], 1e-12)
	}

	_, _, err = s.ranker(opts).SampleRuns(c, 0)
	s.Require().Error(err)
}

func (s *RankerSuite) TestOptionsFromConfig() {
	cfg := utils.Config{Damping: 0.9, Samples: 10, Tolerance: 0.01, MaxSweeps: 5, Seed: 3}
	s.Require().Equal(Options{Damping: 0.9, Samples: 10, Tolerance: 0.01, MaxSweeps: 5, Seed: 3}, OptionsFrom(cfg))
}

func TestRanksHelpers(t *testing.T) {
	a := Ranks{"b": 0.5, "a": 0.25, "c": 0.25}
	b := Ranks{"b": 0.4, "a": 0.35}
	require.Equal(t, []string{"a", "b", "c"}, a.Pages())
	require.Equal(t, "b", a.Top())
	require.Equal(t, "a", Ranks{"b": 0.5, "a": 0.5}.Top())
	require.InDelta(t, 0.45, Distance(a, b), 1e-12)
	require.InDelta(t, 0.25, MaxDelta(a, b), 1e-12)
}
