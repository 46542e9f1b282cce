package mixture

import "math"

// convergenceMonitor tracks one run's θ trajectory and decides termination.
// Each run constructs a fresh monitor; nothing is shared across runs.
type convergenceMonitor struct {
	epsilon  float64
	maxIters int
	prev     Theta
	iter     int
	started  bool
}

func newConvergenceMonitor(epsilon float64, maxIters int) *convergenceMonitor {
	return &convergenceMonitor{epsilon: epsilon, maxIters: maxIters}
}

// observe records the next snapshot and returns the improvement over the
// previous one, the max component-wise absolute change. The first snapshot
// (the initial guess) has nothing to diff against and reports +Inf.
func (cm *convergenceMonitor) observe(th Theta) float64 {
	if !cm.started {
		cm.started = true
		cm.prev = th
		return math.Inf(1)
	}
	impr := improvement(cm.prev, th)
	cm.prev = th
	cm.iter++
	return impr
}

func (cm *convergenceMonitor) converged(impr float64) bool {
	return impr <= cm.epsilon
}

func (cm *convergenceMonitor) exhausted() bool {
	return cm.iter >= cm.maxIters
}

// FirstConvergence scans a θ trajectory, initial snapshot first, and returns
// the iteration index at which the improvement first drops to epsilon or
// below. The second return is false when no iteration within maxIters
// qualifies.
func FirstConvergence(trajectory []Theta, epsilon float64, maxIters int) (int, bool) {
	for i := 1; i < len(trajectory) && i <= maxIters; i++ {
		if improvement(trajectory[i-1], trajectory[i]) <= epsilon {
			return i, true
		}
	}
	return 0, false
}
