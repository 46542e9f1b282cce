package mixture

import "github.com/pkg/errors"

var (
	// ErrInvalidParameter is returned, wrapped with detail, when a constructor
	// or pure function is given an argument outside its domain. Nothing runs
	// after it; validation happens before the first iteration.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDegenerateLikelihood is returned when an experiment has exactly zero
	// probability under both components, which would make the responsibility
	// weights 0/0. The run that hit it is aborted rather than continuing with
	// NaN weights.
	ErrDegenerateLikelihood = errors.New("zero likelihood under both components")
)
