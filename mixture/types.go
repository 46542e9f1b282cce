package mixture

import (
	"math"

	"github.com/pkg/errors"
)

// Outcome is one experiment's result: the number of successes observed in a
// fixed number of trials. The trial count must be the same across all
// experiments fed to an estimator.
type Outcome struct {
	Successes int
	Trials    int
}

// Theta is a snapshot of the two component success probabilities. Estimation
// produces a fresh snapshot every iteration and never mutates an old one, so
// convergence checks can safely diff against the previous snapshot.
type Theta struct {
	A float64
	B float64
}

// Swapped returns the snapshot with the component labels exchanged. Mixture
// solutions come in mirror pairs, so this is mostly useful for comparing runs
// that converged to opposite labelings.
func (th Theta) Swapped() Theta {
	return Theta{A: th.B, B: th.A}
}

// improvement is the max component-wise absolute change between two snapshots.
func improvement(prev, next Theta) float64 {
	return math.Max(math.Abs(next.A-prev.A), math.Abs(next.B-prev.B))
}

// Status describes where an estimation run is in its lifecycle.
type Status int

const (
	// StatusInitialized means the estimator was constructed but has not run.
	StatusInitialized Status = iota
	// StatusIterating means a run is in progress.
	StatusIterating
	// StatusConverged means the parameter change dropped to the threshold.
	StatusConverged
	// StatusMaxItersExceeded means the iteration cap was hit first. This is a
	// reportable result, not a failure.
	StatusMaxItersExceeded
)

func (s Status) String() string {
	switch s {
	case StatusInitialized:
		return "initialized"
	case StatusIterating:
		return "iterating"
	case StatusConverged:
		return "converged"
	case StatusMaxItersExceeded:
		return "max iterations exceeded"
	default:
		return "unknown"
	}
}

// RunResult is the outcome of a single estimation run.
type RunResult struct {
	Final      Theta
	Iterations int
	Status     Status
	// Trajectory holds every θ snapshot of the run, the initial guess first
	// and one entry per completed iteration after it.
	Trajectory []Theta
}

func validateOutcomes(outcomes []Outcome) error {
	if len(outcomes) == 0 {
		return errors.Wrap(ErrInvalidParameter, "need at least one outcome")
	}
	trials := outcomes[0].Trials
	for i, o := range outcomes {
		if o.Trials <= 0 {
			return errors.Wrapf(ErrInvalidParameter, "outcome %d has %d trials, want a positive count", i, o.Trials)
		}
		if o.Trials != trials {
			return errors.Wrapf(ErrInvalidParameter,
				"outcome %d has %d trials but outcome 0 has %d; the trial count is fixed across experiments", i, o.Trials, trials)
		}
		if o.Successes < 0 || o.Successes > o.Trials {
			return errors.Wrapf(ErrInvalidParameter, "outcome %d has %d successes, want [0, %d]", i, o.Successes, o.Trials)
		}
	}
	return nil
}
