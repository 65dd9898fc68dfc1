package docs2pdf

import "runtime"

// Worker sizing constants.
const (
	// MinWorkers ensures units are rendered at all.
	MinWorkers = 1

	// MaxWorkers caps concurrent browser pages to limit memory (~100MB each).
	MaxWorkers = 8

	// cpuDivisor leaves headroom for Chrome renderer processes.
	cpuDivisor = 2
)

// ResolvePoolSize determines how many units render at once.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by the CLI.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}
