package mixture

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Prior is an independent Gaussian prior over one component's success
// probability. Constant for the duration of a run.
type Prior struct {
	Mean   float64
	StdDev float64
}

// Density evaluates the Gaussian density at x. It is strictly positive for
// any finite x, which keeps a MAP-weighted score from vanishing when the
// likelihood alone would.
func (p Prior) Density(x float64) float64 {
	return distuv.Normal{Mu: p.Mean, Sigma: p.StdDev}.Prob(x)
}

func (p Prior) validate() error {
	if p.StdDev <= 0 {
		return errors.Wrapf(ErrInvalidParameter, "prior stddev must be positive, got %v", p.StdDev)
	}
	return nil
}

// Priors pairs the per-component priors enabling MAP estimation.
type Priors struct {
	A Prior
	B Prior
}

func (p Priors) validate() error {
	if err := p.A.validate(); err != nil {
		return err
	}
	return p.B.validate()
}
