// Package main contains a command to fit a two-component binomial mixture
// with EM, either on success counts given directly or on a sampled synthetic
// dataset, optionally probing initialization sensitivity with random restarts.
package main

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/coinem/coinem/mixture"
)

var logger = golog.NewDevelopmentLogger("estimate")

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command. Real-valued options are strings so that flag
// parsing stays simple; they are converted right after parsing.
type Arguments struct {
	Trials         int    `flag:"trials,default=10,usage=trials per experiment"`
	Outcomes       string `flag:"outcomes,default=5;9;8;4;7,usage=success counts separated by ';'"`
	Epsilon        string `flag:"epsilon,default=0.001,usage=convergence threshold"`
	MaxIterations  int    `flag:"max-iterations,default=100,usage=iteration cap per run"`
	ThetaA         string `flag:"theta-a,default=0.6,usage=initial guess for component A"`
	ThetaB         string `flag:"theta-b,default=0.5,usage=initial guess for component B"`
	MAP            bool   `flag:"map,usage=fold Gaussian priors into the E-step (MAP mode)"`
	PriorA         string `flag:"prior-a,default=0.5:0.1,usage=component A prior as mean:stddev"`
	PriorB         string `flag:"prior-b,default=0.5:0.1,usage=component B prior as mean:stddev"`
	Restarts       int    `flag:"restarts,default=1,usage=number of random restarts"`
	Seed           int    `flag:"seed,default=1,usage=seed for restart initialization and sampling"`
	TrueTheta      string `flag:"true-theta,default=,usage=sample synthetic outcomes from θ_A:θ_B instead of --outcomes"`
	NumExperiments int    `flag:"num-experiments,default=20,usage=experiments to sample with --true-theta"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := goutils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	epsilon, err := parseFloatArg("epsilon", argsParsed.Epsilon)
	if err != nil {
		return err
	}
	initial, err := parseThetaArgs(argsParsed.ThetaA, argsParsed.ThetaB)
	if err != nil {
		return err
	}
	var priors *mixture.Priors
	if argsParsed.MAP {
		priorA, err := parsePriorArg("prior-a", argsParsed.PriorA)
		if err != nil {
			return err
		}
		priorB, err := parsePriorArg("prior-b", argsParsed.PriorB)
		if err != nil {
			return err
		}
		priors = &mixture.Priors{A: priorA, B: priorB}
	}

	outcomes, exact, err := buildOutcomes(argsParsed, logger)
	if err != nil {
		return err
	}

	if argsParsed.Restarts > 1 {
		return runRestarts(ctx, outcomes, argsParsed, epsilon, priors, logger)
	}
	return runOnce(ctx, outcomes, initial, exact, argsParsed, epsilon, priors, logger)
}

// buildOutcomes returns the dataset to fit: either the --outcomes counts, or
// a synthetic sample drawn from --true-theta along with the exact estimate
// its hidden assignment yields for comparison.
func buildOutcomes(args Arguments, logger golog.Logger) ([]mixture.Outcome, *mixture.Theta, error) {
	if args.TrueTheta == "" {
		outcomes, err := parseOutcomes(args.Outcomes, args.Trials)
		return outcomes, nil, err
	}
	trueTheta, err := parsePairArg("true-theta", args.TrueTheta)
	if err != nil {
		return nil, nil, err
	}
	outcomes, assignment, err := mixture.SampleOutcomes(
		args.NumExperiments, args.Trials, mixture.Theta{A: trueTheta[0], B: trueTheta[1]}, uint64(args.Seed))
	if err != nil {
		return nil, nil, err
	}
	exact, err := mixture.ExactMLE(outcomes, assignment)
	if err != nil {
		// A lopsided sample can leave one component with no experiments; the
		// fit can still run, only the reference comparison is lost.
		logger.Warnw("no exact reference for this sample", "error", err)
		return outcomes, nil, nil
	}
	logger.Infow("sampled outcomes", "n", len(outcomes), "true_theta_a", trueTheta[0], "true_theta_b", trueTheta[1])
	return outcomes, &exact, nil
}

func runOnce(
	ctx context.Context,
	outcomes []mixture.Outcome,
	initial mixture.Theta,
	exact *mixture.Theta,
	args Arguments,
	epsilon float64,
	priors *mixture.Priors,
	logger golog.Logger,
) error {
	est, err := mixture.NewEstimator(outcomes, initial, epsilon, args.MaxIterations, priors, logger)
	if err != nil {
		return err
	}
	res, err := est.Run(ctx)
	if err != nil {
		return err
	}
	for i, th := range res.Trajectory {
		logger.Infow("iteration", "n", i, "theta_a", th.A, "theta_b", th.B)
	}
	logger.Infow("finished",
		"status", res.Status.String(),
		"iterations", res.Iterations,
		"theta_a", res.Final.A,
		"theta_b", res.Final.B,
	)
	if exact != nil {
		logger.Infow("exact estimate from the hidden assignment", "theta_a", exact.A, "theta_b", exact.B)
	}
	return nil
}

func runRestarts(
	ctx context.Context,
	outcomes []mixture.Outcome,
	args Arguments,
	epsilon float64,
	priors *mixture.Priors,
	logger golog.Logger,
) error {
	restarter, err := mixture.NewRestarter(
		outcomes, args.Restarts, epsilon, args.MaxIterations, priors, uint64(args.Seed), logger)
	if err != nil {
		return err
	}
	summary, err := restarter.Run(ctx)
	if err != nil {
		return err
	}
	logger.Infow("restart batch",
		"restarts", args.Restarts,
		"converged", summary.Converged,
		"non_converged", summary.NonConverged,
		"failed", summary.Failed,
		"mean_theta_a", summary.MeanA,
		"mean_theta_b", summary.MeanB,
		"stddev_theta_a", summary.StdDevA,
		"stddev_theta_b", summary.StdDevB,
	)
	if summary.Converged >= 2 {
		centers, err := summary.ClusterFinals(2)
		if err != nil {
			return err
		}
		for i, c := range centers {
			logger.Infow("fixed point", "cluster", i, "theta_a", c.A, "theta_b", c.B)
		}
	}

	var finalsA []float64
	for _, res := range summary.Results {
		if res == nil || res.Status != mixture.StatusConverged {
			continue
		}
		finalsA = append(finalsA, res.Final.A)
	}
	if len(finalsA) == 0 {
		return nil
	}
	hist := histogram.Hist(10, finalsA)
	return histogram.Fprint(os.Stdout, hist, histogram.Linear(40))
}

func parseOutcomes(s string, trials int) ([]mixture.Outcome, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ',' || r == ' '
	})
	if len(fields) == 0 {
		return nil, errors.New("need at least one success count in --outcomes")
	}
	outcomes := make([]mixture.Outcome, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrapf(err, "bad success count %q", f)
		}
		outcomes = append(outcomes, mixture.Outcome{Successes: n, Trials: trials})
	}
	return outcomes, nil
}

func parseFloatArg(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "bad value for --%s", name)
	}
	return v, nil
}

func parseThetaArgs(a, b string) (mixture.Theta, error) {
	va, err := parseFloatArg("theta-a", a)
	if err != nil {
		return mixture.Theta{}, err
	}
	vb, err := parseFloatArg("theta-b", b)
	if err != nil {
		return mixture.Theta{}, err
	}
	return mixture.Theta{A: va, B: vb}, nil
}

// parsePairArg splits a "x:y" flag value into its two floats.
func parsePairArg(name, s string) ([2]float64, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return [2]float64{}, errors.Errorf("--%s must look like x:y, got %q", name, s)
	}
	x, err := parseFloatArg(name, parts[0])
	if err != nil {
		return [2]float64{}, err
	}
	y, err := parseFloatArg(name, parts[1])
	if err != nil {
		return [2]float64{}, err
	}
	return [2]float64{x, y}, nil
}

func parsePriorArg(name, s string) (mixture.Prior, error) {
	pair, err := parsePairArg(name, s)
	if err != nil {
		return mixture.Prior{}, err
	}
	return mixture.Prior{Mean: pair[0], StdDev: pair[1]}, nil
}
