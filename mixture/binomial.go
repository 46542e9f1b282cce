package mixture

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/combin"
)

// BinomialPMF returns the probability of observing successes out of trials
// independent draws each succeeding with probability p. The coefficient is
// computed in log space so trial counts into the hundreds stay finite.
//
// p of exactly 0 or 1 is allowed and follows the 0^0 = 1 convention: the mass
// is 1 when the outcome is forced and 0 when it is impossible.
func BinomialPMF(successes, trials int, p float64) (float64, error) {
	if trials <= 0 {
		return 0, errors.Wrapf(ErrInvalidParameter, "trials must be positive, got %d", trials)
	}
	if successes < 0 || successes > trials {
		return 0, errors.Wrapf(ErrInvalidParameter, "successes must be in [0, %d], got %d", trials, successes)
	}
	if p < 0 || p > 1 {
		return 0, errors.Wrapf(ErrInvalidParameter, "p must be in [0, 1], got %v", p)
	}
	// A boundary p makes one factor an exact 0 or 1; handle outside log space.
	if p == 0 {
		if successes == 0 {
			return 1, nil
		}
		return 0, nil
	}
	if p == 1 {
		if successes == trials {
			return 1, nil
		}
		return 0, nil
	}
	h := float64(successes)
	t := float64(trials - successes)
	logPMF := combin.LogGeneralizedBinomial(float64(trials), h) + h*math.Log(p) + t*math.Log(1-p)
	return math.Exp(logPMF), nil
}
