package common

import (
	"fmt"
	"sync"
	"time"
)

// Progress tracks how far a scan has advanced through a known number of
// items and reports completion in 5% increments.
type Progress struct {
	mu       sync.Mutex
	start    time.Time
	total    int
	done     int
	lastStep int
}

const progressStepPercent = 5

func NewProgress(total int) *Progress {
	return &Progress{start: time.Now(), total: total, lastStep: -1}
}

// Step records n more completed items. It returns the current percentage and
// whether a new 5% increment has been crossed since the last report.
func (p *Progress) Step(n int) (percent int, report bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done += n
	if p.total <= 0 {
		return 100, false
	}
	percent = p.done * 100 / p.total
	if percent > 100 {
		percent = 100
	}
	step := percent / progressStepPercent
	if step > p.lastStep {
		p.lastStep = step
		return percent, true
	}
	return percent, false
}

func (p *Progress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Summary renders item count, elapsed wall time and throughput.
func (p *Progress) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	elapsed := time.Since(p.start)
	rate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(p.done) / secs
	}
	return fmt.Sprintf("%d/%d pages in %s (%.1f pages/s)", p.done, p.total, elapsed.Round(time.Millisecond), rate)
}
