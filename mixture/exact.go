package mixture

import "github.com/pkg/errors"

// Component identifies one of the two mixture components.
type Component int

const (
	// ComponentA is the first mixture component.
	ComponentA Component = iota
	// ComponentB is the second mixture component.
	ComponentB
)

// ExactMLE computes the closed-form per-component estimate when the latent
// assignment is observed: each component's success probability is its total
// successes over its total trials. The assignment is normally hidden; this
// exists to validate EM against ground truth, not for the inference path.
func ExactMLE(outcomes []Outcome, assignment []Component) (Theta, error) {
	if err := validateOutcomes(outcomes); err != nil {
		return Theta{}, err
	}
	if len(assignment) != len(outcomes) {
		return Theta{}, errors.Wrapf(ErrInvalidParameter,
			"assignment length %d does not match %d outcomes", len(assignment), len(outcomes))
	}
	var succA, trialsA, succB, trialsB float64
	for i, o := range outcomes {
		switch assignment[i] {
		case ComponentA:
			succA += float64(o.Successes)
			trialsA += float64(o.Trials)
		case ComponentB:
			succB += float64(o.Successes)
			trialsB += float64(o.Trials)
		default:
			return Theta{}, errors.Wrapf(ErrInvalidParameter, "unknown component %v for outcome %d", assignment[i], i)
		}
	}
	if trialsA == 0 || trialsB == 0 {
		return Theta{}, errors.Wrap(ErrInvalidParameter, "each component needs at least one assigned experiment")
	}
	return Theta{A: succA / trialsA, B: succB / trialsB}, nil
}
