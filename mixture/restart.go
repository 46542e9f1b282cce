package mixture

import (
	"context"
	"math"

	"github.com/edaniels/golog"
	"github.com/montanaflynn/stats"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/coinem/coinem/utils"
)

// Restarter probes EM's sensitivity to initialization by running the
// estimator from many random starting points over the same outcomes. The runs
// share nothing mutable, so they execute in parallel; one bad run is recorded
// and the rest of the batch keeps going.
type Restarter struct {
	outcomes []Outcome
	restarts int
	epsilon  float64
	maxIters int
	priors   *Priors
	sample   func() float64
	logger   golog.Logger
}

// RestartSummary aggregates a batch of restarts. Mean and stddev cover
// converged runs only; runs that hit the iteration cap or failed are tallied
// separately and never fold into the statistics.
type RestartSummary struct {
	// Results has one entry per restart in launch order. A nil entry marks a
	// run that failed before producing a result.
	Results      []*RunResult
	Converged    int
	NonConverged int
	Failed       int
	MeanA        float64
	MeanB        float64
	StdDevA      float64
	StdDevB      float64
}

// NewRestarter validates the batch configuration. Initial θ values are drawn
// independently uniform on (0, 1) from a source seeded with seed, so a batch
// is reproducible end to end.
func NewRestarter(
	outcomes []Outcome,
	restarts int,
	epsilon float64,
	maxIterations int,
	priors *Priors,
	seed uint64,
	logger golog.Logger,
) (*Restarter, error) {
	if restarts < 1 {
		return nil, errors.Wrapf(ErrInvalidParameter, "restarts must be at least 1, got %d", restarts)
	}
	if err := validateOutcomes(outcomes); err != nil {
		return nil, err
	}
	// The batch shares one configuration across every run; reject it here
	// rather than letting each run fail identically mid-batch.
	if epsilon < 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "epsilon must be positive, got %v", epsilon)
	}
	if epsilon == 0 {
		epsilon = DefaultEpsilon
	}
	if maxIterations < 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "max iterations must be positive, got %d", maxIterations)
	}
	if maxIterations == 0 {
		maxIterations = DefaultMaxIterations
	}
	if priors != nil {
		if err := priors.validate(); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = golog.Global()
	}
	uni := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(seed)}
	sample := func() float64 {
		v := uni.Rand()
		// The estimator rejects a θ component at exactly 0 or 1.
		for v == 0 || v == 1 {
			v = uni.Rand()
		}
		return v
	}
	return &Restarter{
		outcomes: outcomes,
		restarts: restarts,
		epsilon:  epsilon,
		maxIters: maxIterations,
		priors:   priors,
		sample:   sample,
		logger:   logger,
	}, nil
}

// Run executes every restart to termination and aggregates the results.
// Errors local to one run (a degenerate likelihood, most likely) are logged
// and tallied as failures; only context cancellation aborts the batch.
func (r *Restarter) Run(ctx context.Context) (*RestartSummary, error) {
	// Draw every initial θ up front: the random source is not goroutine-safe
	// and drawing in launch order keeps the batch reproducible.
	initials := make([]Theta, r.restarts)
	for i := range initials {
		initials[i] = Theta{A: r.sample(), B: r.sample()}
	}

	results := make([]*RunResult, r.restarts)
	runErrs := make([]error, r.restarts)
	fns := make([]utils.SimpleFunc, 0, r.restarts)
	for i := range initials {
		i := i
		fns = append(fns, func(ctx context.Context) error {
			est, err := NewEstimator(r.outcomes, initials[i], r.epsilon, r.maxIters, r.priors, r.logger)
			if err != nil {
				runErrs[i] = err
				return nil
			}
			res, err := est.Run(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				runErrs[i] = err
				return nil
			}
			results[i] = res
			return nil
		})
	}
	elapsed, err := utils.RunInParallel(ctx, fns)
	if err != nil {
		return nil, err
	}
	r.logger.Debugw("restart batch finished", "restarts", r.restarts, "elapsed", elapsed)

	summary := &RestartSummary{Results: results}
	var finalsA, finalsB []float64
	for i, res := range results {
		if res == nil {
			summary.Failed++
			r.logger.Warnw("restart failed", "restart", i, "initial", initials[i], "error", runErrs[i])
			continue
		}
		if res.Status != StatusConverged {
			summary.NonConverged++
			continue
		}
		summary.Converged++
		finalsA = append(finalsA, res.Final.A)
		finalsB = append(finalsB, res.Final.B)
	}
	if summary.Converged > 0 {
		if summary.MeanA, err = stats.Mean(finalsA); err != nil {
			return nil, err
		}
		if summary.MeanB, err = stats.Mean(finalsB); err != nil {
			return nil, err
		}
	}
	if summary.Converged > 1 {
		if summary.StdDevA, err = stats.StandardDeviationSample(finalsA); err != nil {
			return nil, err
		}
		if summary.StdDevB, err = stats.StandardDeviationSample(finalsB); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// FixedPoints returns the distinct converged final θ values, where finals
// within tol of each other (max component-wise difference) count as the same
// fixed point. Mirror solutions show up as two entries; that is the expected
// label-switching behavior, not a defect.
func (s *RestartSummary) FixedPoints(tol float64) []Theta {
	var points []Theta
	for _, res := range s.Results {
		if res == nil || res.Status != StatusConverged {
			continue
		}
		known := false
		for _, p := range points {
			if improvement(p, res.Final) <= tol {
				known = true
				break
			}
		}
		if !known {
			points = append(points, res.Final)
		}
	}
	return points
}

type thetaObservation struct {
	th Theta
}

func (o thetaObservation) Coordinates() clusters.Coordinates {
	return clusters.Coordinates{o.th.A, o.th.B}
}

func (o thetaObservation) Distance(point clusters.Coordinates) float64 {
	return math.Sqrt(utils.Square(o.th.A-point[0]) + utils.Square(o.th.B-point[1]))
}

// ClusterFinals partitions the converged finals into numClusters groups with
// k-means and returns the cluster centers. With two mixture components the
// interesting call is numClusters = 2, which recovers the mirror pair.
func (s *RestartSummary) ClusterFinals(numClusters int) ([]Theta, error) {
	all := clusters.Observations{}
	for _, res := range s.Results {
		if res == nil || res.Status != StatusConverged {
			continue
		}
		all = append(all, thetaObservation{res.Final})
	}
	if len(all) < numClusters {
		return nil, errors.Errorf("need at least %d converged runs to find %d clusters, got %d", numClusters, numClusters, len(all))
	}

	km := kmeans.New()

	cc, err := km.Partition(all, numClusters)
	if err != nil {
		return nil, err
	}

	centers := make([]Theta, 0, len(cc))
	for _, c := range cc {
		centers = append(centers, Theta{A: c.Center[0], B: c.Center[1]})
	}
	return centers, nil
}
