// Package progress reports fractional progress of long-running work such as
// batch simulations.
//
// Reporters receive values in [0, 1]. Adapters compose them:
//
//	r := progress.Multi(
//	    progress.Throttle(progress.Log(logger, "layout"), 0.1),
//	    progress.Func(func(f float64) { spinner.UpdateMessage(pct(f)) }),
//	)
package progress

import (
	"fmt"
	"math"
	"sync"

	"github.com/charmbracelet/log"
)

// Reporter receives progress fractions in [0, 1].
type Reporter interface {
	Report(fraction float64)
}

// Func adapts a function to a Reporter.
type Func func(fraction float64)

// Report calls f.
func (f Func) Report(fraction float64) { f(fraction) }

// Nop discards all reports.
var Nop Reporter = Func(func(float64) {})

// OrNop returns r, or Nop when r is nil.
func OrNop(r Reporter) Reporter {
	if r == nil {
		return Nop
	}
	return r
}

// Throttle forwards a report only when progress advanced by at least step
// since the last forwarded one. The first report and completion (1) are
// always forwarded.
func Throttle(r Reporter, step float64) Reporter {
	return &throttle{next: r, step: step, last: math.Inf(-1)}
}

type throttle struct {
	mu   sync.Mutex
	next Reporter
	step float64
	last float64
}

func (t *throttle) Report(fraction float64) {
	t.mu.Lock()
	forward := fraction >= 1 && t.last < 1 || fraction-t.last >= t.step
	if forward {
		t.last = fraction
	}
	t.mu.Unlock()
	if forward {
		t.next.Report(fraction)
	}
}

// Log writes progress to logger at debug level as a percentage.
// Use Throttle to bound the number of lines.
func Log(logger *log.Logger, label string) Reporter {
	return Func(func(fraction float64) {
		logger.Debug(label, "progress", Percent(fraction))
	})
}

// Multi fans a report out to every non-nil reporter.
func Multi(rs ...Reporter) Reporter {
	var out []Reporter
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return Func(func(fraction float64) {
		for _, r := range out {
			r.Report(fraction)
		}
	})
}

// Percent formats a fraction as an integer percentage such as "42%".
func Percent(fraction float64) string {
	return fmt.Sprintf("%d%%", int(math.Floor(math.Max(0, math.Min(1, fraction))*100)))
}
