package dirsize

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultProgressInterval is the minimum spacing between throttled progress updates.
	DefaultProgressInterval = 200 * time.Millisecond

	// maxRunningPercentage caps estimates until the scan has actually finished.
	maxRunningPercentage = 95
)

// Progress is a progress update delivered to a ProgressHook.
type Progress struct {
	// Message names what is currently being scanned.
	Message string `json:"message"`
	// Percentage is an estimate in [0, 100]; 100 only after success.
	Percentage int `json:"percentage"`
	// Done marks the terminal update of a scan.
	Done bool `json:"done,omitempty"`
	// Canceled marks the terminal update of a canceled scan.
	Canceled bool `json:"canceled,omitempty"`
}

// ProgressHook receives progress updates. Calls for one scan are sequential.
type ProgressHook func(Progress)

// aggregator turns walker deltas into throttled percentage estimates.
//
// The estimate is a heuristic: the total grows as directories are discovered,
// so percentages are bounded but not exact and may move backwards when a large
// subtree is discovered late.
type aggregator struct {
	discovered     int64
	processed      int64
	estimatedTotal int64
	last           int
	limiter        *rate.Limiter
}

func newAggregator(interval time.Duration) *aggregator {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	return &aggregator{
		estimatedTotal: 1,
		limiter:        rate.NewLimiter(rate.Every(interval), 1),
	}
}

// start returns the initial update. It is never throttled and starts the
// throttle window.
func (a *aggregator) start(root string) Progress {
	a.limiter.Allow()

	return Progress{Message: "Scanning " + root, Percentage: 0}
}

// seed raises the estimated total to at least n.
func (a *aggregator) seed(n int64) {
	a.estimatedTotal = max(a.estimatedTotal, n)
}

// apply folds d into the estimate and reports whether an update is due.
func (a *aggregator) apply(d delta) (Progress, bool) {
	if d.Seed > 0 {
		a.seed(d.Seed)
	}

	a.discovered += d.Discovered
	a.processed += d.Processed
	a.estimatedTotal = max(a.estimatedTotal, a.discovered+a.discovered/10)

	if !a.limiter.Allow() {
		return Progress{}, false
	}

	a.last = a.percentage()

	return Progress{Message: "Scanning " + d.Current, Percentage: a.last}, true
}

func (a *aggregator) percentage() int {
	pct := a.processed * 100 / a.estimatedTotal

	return int(min(max(pct, 0), maxRunningPercentage))
}

// complete returns the terminal update of a successful scan.
func (a *aggregator) complete(root string) Progress {
	a.last = 100

	return Progress{Message: "Scanned " + root, Percentage: 100, Done: true}
}

// canceled returns the terminal update of a canceled scan without advancing
// the percentage.
func (a *aggregator) canceled() Progress {
	return Progress{Message: "Scan canceled", Percentage: a.last, Done: true, Canceled: true}
}

// failed returns the terminal update of a scan that ended in an error.
func (a *aggregator) failed(err error) Progress {
	return Progress{Message: fmt.Sprintf("Scan failed: %v", err), Percentage: a.last, Done: true}
}
