package mixture

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// SampleOutcomes draws numExperiments outcomes from a two-component binomial
// mixture with the given true parameters: each experiment picks component A
// or B by fair coin, then draws its success count Binomial(trials, θ of the
// picked component). The returned assignment records which component
// generated each experiment so results can be validated against ExactMLE.
// Fully reproducible given the seed.
func SampleOutcomes(numExperiments, trials int, trueTheta Theta, seed uint64) ([]Outcome, []Component, error) {
	if numExperiments <= 0 {
		return nil, nil, errors.Wrapf(ErrInvalidParameter, "num experiments must be positive, got %d", numExperiments)
	}
	if trials <= 0 {
		return nil, nil, errors.Wrapf(ErrInvalidParameter, "trials must be positive, got %d", trials)
	}
	if trueTheta.A < 0 || trueTheta.A > 1 || trueTheta.B < 0 || trueTheta.B > 1 {
		return nil, nil, errors.Wrapf(ErrInvalidParameter,
			"true θ components must be in [0, 1], got (%v, %v)", trueTheta.A, trueTheta.B)
	}

	src := rand.NewSource(seed)
	pick := distuv.Bernoulli{P: 0.5, Src: src}
	binomA := distuv.Binomial{N: float64(trials), P: trueTheta.A, Src: src}
	binomB := distuv.Binomial{N: float64(trials), P: trueTheta.B, Src: src}

	outcomes := make([]Outcome, numExperiments)
	assignment := make([]Component, numExperiments)
	for i := range outcomes {
		comp := ComponentA
		binom := binomA
		if pick.Rand() == 1 {
			comp = ComponentB
			binom = binomB
		}
		outcomes[i] = Outcome{Successes: int(binom.Rand()), Trials: trials}
		assignment[i] = comp
	}
	return outcomes, assignment, nil
}
