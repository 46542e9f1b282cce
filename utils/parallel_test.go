package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.viam.com/test"
	gutils "go.viam.com/utils"
)

func TestRunInParallel(t *testing.T) {
	wait100ms := func(ctx context.Context) error {
		gutils.SelectContextOrWait(ctx, 100*time.Millisecond)
		return ctx.Err()
	}

	elapsed, err := RunInParallel(context.Background(), []SimpleFunc{wait100ms, wait100ms})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, elapsed, test.ShouldBeLessThan, 110*time.Millisecond)
	test.That(t, elapsed, test.ShouldBeGreaterThan, 90*time.Millisecond)

	errFunc := func(ctx context.Context) error {
		return errors.New("bad")
	}

	// A failure cancels the rest of the batch instead of waiting it out.
	elapsed, err = RunInParallel(context.Background(), []SimpleFunc{wait100ms, wait100ms, errFunc})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, elapsed, test.ShouldBeLessThan, 50*time.Millisecond)

	panicFunc := func(ctx context.Context) error {
		panic("boom")
	}

	_, err = RunInParallel(context.Background(), []SimpleFunc{panicFunc})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = RunInParallel(context.Background(), nil)
	test.That(t, err, test.ShouldBeNil)
}

func TestSquare(t *testing.T) {
	test.That(t, Square(3), test.ShouldEqual, 9)
	test.That(t, Square(-0.5), test.ShouldEqual, 0.25)
	test.That(t, Square(0), test.ShouldEqual, 0)
}
