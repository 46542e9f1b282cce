// Package mixture estimates the parameters of a two-component binomial
// mixture with expectation-maximization. Each experiment is a run of repeated
// Bernoulli trials generated by one of two hidden components; EM alternates
// between weighting each experiment by its posterior component membership
// (E-step) and re-estimating both success probabilities in closed form
// (M-step) until the parameters stop moving.
package mixture

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

const (
	// DefaultEpsilon is the convergence threshold used when none is given.
	DefaultEpsilon = 0.001
	// DefaultMaxIterations caps a run when no cap is given, bounding the time
	// spent on a trajectory that never settles.
	DefaultMaxIterations = 100
)

// Estimator performs a single EM run over a fixed set of experiment outcomes.
// A run is fully deterministic given its inputs; randomness only ever enters
// through the initial θ or the outcomes themselves.
//
// With priors set, the Gaussian prior density at the current θ multiplies each
// component's score during the E-step. The M-step stays the unpenalized closed
// form, so this is the folded-in MAP approximation rather than an exact
// penalized posterior mode.
type Estimator struct {
	outcomes []Outcome
	initial  Theta
	epsilon  float64
	maxIters int
	priors   *Priors
	logger   golog.Logger
	status   Status
}

// NewEstimator validates the run configuration up front so no iteration ever
// starts from a bad state. Both initial θ components must be strictly inside
// (0, 1); a component at exactly 0 or 1 keeps zero likelihood forever. A zero
// epsilon or maxIterations selects the package default; negative values are
// rejected. A nil logger falls back to the global one.
func NewEstimator(
	outcomes []Outcome,
	initial Theta,
	epsilon float64,
	maxIterations int,
	priors *Priors,
	logger golog.Logger,
) (*Estimator, error) {
	if err := validateOutcomes(outcomes); err != nil {
		return nil, err
	}
	if initial.A <= 0 || initial.A >= 1 || initial.B <= 0 || initial.B >= 1 {
		return nil, errors.Wrapf(ErrInvalidParameter,
			"initial θ components must be strictly inside (0, 1), got (%v, %v)", initial.A, initial.B)
	}
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
	return &Estimator{
		outcomes: outcomes,
		initial:  initial,
		epsilon:  epsilon,
		maxIters: maxIterations,
		priors:   priors,
		logger:   logger,
		status:   StatusInitialized,
	}, nil
}

// Status reports where the estimator is in its lifecycle.
func (e *Estimator) Status() Status {
	return e.status
}

// Run executes EM to termination and returns the result, including the full θ
// trajectory for diagnostics. A hit iteration cap is reported through the
// result status, not an error; errors are reserved for degenerate likelihoods
// and context cancellation.
func (e *Estimator) Run(ctx context.Context) (*RunResult, error) {
	monitor := newConvergenceMonitor(e.epsilon, e.maxIters)
	current := e.initial
	trajectory := make([]Theta, 0, e.maxIters+1)
	trajectory = append(trajectory, current)
	monitor.observe(current)
	e.status = StatusIterating

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := e.step(current)
		if err != nil {
			return nil, err
		}
		trajectory = append(trajectory, next)
		impr := monitor.observe(next)
		e.logger.Debugw("em iteration",
			"iteration", monitor.iter,
			"theta_a", next.A,
			"theta_b", next.B,
			"improvement", impr,
		)
		current = next
		if monitor.converged(impr) {
			e.status = StatusConverged
			break
		}
		if monitor.exhausted() {
			e.status = StatusMaxItersExceeded
			break
		}
	}
	return &RunResult{
		Final:      current,
		Iterations: monitor.iter,
		Status:     e.status,
		Trajectory: trajectory,
	}, nil
}

// step performs one E-step/M-step pass from the given θ and returns the next
// snapshot.
func (e *Estimator) step(current Theta) (Theta, error) {
	weights, err := responsibilities(e.outcomes, current, e.priors)
	if err != nil {
		return Theta{}, err
	}
	var succA, failA, succB, failB float64
	for i, o := range e.outcomes {
		h := float64(o.Successes)
		t := float64(o.Trials - o.Successes)
		succA += weights[i][0] * h
		failA += weights[i][0] * t
		succB += weights[i][1] * h
		failB += weights[i][1] * t
	}
	return Theta{A: succA / (succA + failA), B: succB / (succB + failB)}, nil
}

// responsibilities computes the posterior membership weights of every
// experiment under θ, one (A, B) pair per experiment, each pair summing to 1.
// With priors, the Gaussian density at the current θ scales each component's
// score; the density is constant across experiments within one iteration.
func responsibilities(outcomes []Outcome, th Theta, priors *Priors) ([][2]float64, error) {
	priorA, priorB := 1.0, 1.0
	if priors != nil {
		priorA = priors.A.Density(th.A)
		priorB = priors.B.Density(th.B)
	}
	weights := make([][2]float64, len(outcomes))
	for i, o := range outcomes {
		pmfA, err := BinomialPMF(o.Successes, o.Trials, th.A)
		if err != nil {
			return nil, err
		}
		pmfB, err := BinomialPMF(o.Successes, o.Trials, th.B)
		if err != nil {
			return nil, err
		}
		scoreA := pmfA * priorA
		scoreB := pmfB * priorB
		total := scoreA + scoreB
		if total == 0 {
			return nil, errors.Wrapf(ErrDegenerateLikelihood,
				"outcome %d (%d/%d) under θ=(%v, %v)", i, o.Successes, o.Trials, th.A, th.B)
		}
		weights[i] = [2]float64{scoreA / total, scoreB / total}
	}
	return weights, nil
}
