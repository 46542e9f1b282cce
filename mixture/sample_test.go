package mixture

import (
	"errors"
	"testing"

	"go.viam.com/test"
)

func TestSampleOutcomesReproducible(t *testing.T) {
	outcomes1, assignment1, err := SampleOutcomes(30, 25, Theta{A: 0.7, B: 0.3}, 99)
	test.That(t, err, test.ShouldBeNil)
	outcomes2, assignment2, err := SampleOutcomes(30, 25, Theta{A: 0.7, B: 0.3}, 99)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, outcomes2, test.ShouldResemble, outcomes1)
	test.That(t, assignment2, test.ShouldResemble, assignment1)

	outcomes3, _, err := SampleOutcomes(30, 25, Theta{A: 0.7, B: 0.3}, 100)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, outcomes3, test.ShouldNotResemble, outcomes1)
}

func TestSampleOutcomesShape(t *testing.T) {
	outcomes, assignment, err := SampleOutcomes(50, 12, Theta{A: 0.9, B: 0.05}, 5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, outcomes, test.ShouldHaveLength, 50)
	test.That(t, assignment, test.ShouldHaveLength, 50)
	for i, o := range outcomes {
		test.That(t, o.Trials, test.ShouldEqual, 12)
		test.That(t, o.Successes, test.ShouldBeBetweenOrEqual, 0, 12)
		test.That(t, assignment[i] == ComponentA || assignment[i] == ComponentB, test.ShouldBeTrue)
	}
}

func TestSampleOutcomesInvalid(t *testing.T) {
	for _, tc := range []struct {
		name      string
		numExp    int
		trials    int
		trueTheta Theta
	}{
		{"no experiments", 0, 10, Theta{A: 0.5, B: 0.5}},
		{"no trials", 5, 0, Theta{A: 0.5, B: 0.5}},
		{"theta out of range", 5, 10, Theta{A: 1.5, B: 0.5}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := SampleOutcomes(tc.numExp, tc.trials, tc.trueTheta, 1)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, errors.Is(err, ErrInvalidParameter), test.ShouldBeTrue)
		})
	}
}
