package mixture

import (
	"context"
	"errors"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func TestExactMLE(t *testing.T) {
	outcomes := outcomesFromCounts([]int{8, 2, 9}, 10)
	assignment := []Component{ComponentA, ComponentB, ComponentA}

	th, err := ExactMLE(outcomes, assignment)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, th.A, test.ShouldAlmostEqual, 0.85, 1e-12)
	test.That(t, th.B, test.ShouldAlmostEqual, 0.2, 1e-12)
}

func TestExactMLEInvalid(t *testing.T) {
	outcomes := outcomesFromCounts([]int{8, 2, 9}, 10)

	for _, tc := range []struct {
		name       string
		outcomes   []Outcome
		assignment []Component
	}{
		{"length mismatch", outcomes, []Component{ComponentA, ComponentB}},
		{"no outcomes", nil, nil},
		{"one-sided assignment", outcomes, []Component{ComponentA, ComponentA, ComponentA}},
		{"unknown component", outcomes, []Component{ComponentA, ComponentB, Component(7)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExactMLE(tc.outcomes, tc.assignment)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, errors.Is(err, ErrInvalidParameter), test.ShouldBeTrue)
		})
	}
}

// With the assignment in hand the closed form is the ground truth; EM run on
// the same well-separated data without it has to land close by.
func TestEMAgreesWithExactOnSeparableData(t *testing.T) {
	logger := golog.NewTestLogger(t)
	outcomes, assignment, err := SampleOutcomes(40, 40, Theta{A: 0.85, B: 0.2}, 3)
	test.That(t, err, test.ShouldBeNil)

	exact, err := ExactMLE(outcomes, assignment)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, exact.A, test.ShouldAlmostEqual, 0.85, 0.1)
	test.That(t, exact.B, test.ShouldAlmostEqual, 0.2, 0.1)

	est, err := NewEstimator(outcomes, Theta{A: 0.8, B: 0.25}, 0.0001, 500, nil, logger)
	test.That(t, err, test.ShouldBeNil)
	res, err := est.Run(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Status, test.ShouldEqual, StatusConverged)

	test.That(t, res.Final.A, test.ShouldAlmostEqual, exact.A, 0.05)
	test.That(t, res.Final.B, test.ShouldAlmostEqual, exact.B, 0.05)
}
