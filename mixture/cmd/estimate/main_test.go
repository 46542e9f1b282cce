package main

import (
	"testing"

	"go.viam.com/test"

	"github.com/coinem/coinem/mixture"
)

func TestParseOutcomes(t *testing.T) {
	outcomes, err := parseOutcomes("5;9;8;4;7", 10)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, outcomes, test.ShouldResemble, []mixture.Outcome{
		{Successes: 5, Trials: 10},
		{Successes: 9, Trials: 10},
		{Successes: 8, Trials: 10},
		{Successes: 4, Trials: 10},
		{Successes: 7, Trials: 10},
	})

	// Commas and spaces work as separators too.
	outcomes, err = parseOutcomes("1, 2 3", 5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, outcomes, test.ShouldHaveLength, 3)

	_, err = parseOutcomes("", 10)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = parseOutcomes("5;x", 10)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestParsePairArg(t *testing.T) {
	pair, err := parsePairArg("prior-a", "0.5:0.1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pair[0], test.ShouldEqual, 0.5)
	test.That(t, pair[1], test.ShouldEqual, 0.1)

	_, err = parsePairArg("prior-a", "0.5")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = parsePairArg("prior-a", "a:b")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestParsePriorArg(t *testing.T) {
	prior, err := parsePriorArg("prior-b", "0.4:0.2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, prior, test.ShouldResemble, mixture.Prior{Mean: 0.4, StdDev: 0.2})
}
