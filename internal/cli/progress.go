package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Progress shows a spinner while the dashboard sources load. The number of
// reads is only known once the group list arrives, so it counts rather than
// filling a bar. It implements dashboard.Observer.
type Progress struct {
	bar         *progressbar.ProgressBar
	description string
	planned     int
	settled     int
	absent      int
	mu          sync.Mutex
}

// NewProgress creates a Progress writing to w.
func NewProgress(w io.Writer, description string) *Progress {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionClearOnFinish(),
	)
	return &Progress{bar: bar, description: description}
}

// Planned adds n expected reads.
func (p *Progress) Planned(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.planned += n
	p.describe()
}

// Settled records one finished read.
func (p *Progress) Settled(_ string, present bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settled++
	if !present {
		p.absent++
	}
	p.describe()
	_ = p.bar.Add(1)
}

// Finish clears the spinner.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Finish()
}

// Counts returns settled and planned reads, and how many were absent.
func (p *Progress) Counts() (settled, planned, absent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled, p.planned, p.absent
}

func (p *Progress) describe() {
	desc := fmt.Sprintf("[cyan]%s[reset] (%d/%d)", p.description, p.settled, p.planned)
	if p.absent > 0 {
		desc += fmt.Sprintf(" [yellow]%d unavailable[reset]", p.absent)
	}
	p.bar.Describe(desc)
}
