package views

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/teammatch/internal/render"
)

// Progress is the "AI is analysing" animation. It advances on its own timer
// and knows nothing about the work it decorates: the percentage shown is not
// progress.
type Progress struct {
	printer  *render.Printer
	label    string
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
	frames   int
}

// StartProgress begins animating. A zero interval draws nothing.
func StartProgress(printer *render.Printer, label string, interval time.Duration) *Progress {
	p := &Progress{
		printer:  printer,
		label:    label,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if interval <= 0 || printer == nil {
		close(p.done)
		return p
	}
	go p.run()
	return p
}

func (p *Progress) run() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	percent := 0
	for {
		p.printer.Progress(p.label, percent)
		p.frames++
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			// Creep toward 95 and never arrive.
			percent += max(1, (95-percent)/8)
			percent = min(percent, 95)
		}
	}
}

// Stop ends the animation. complete draws a final full bar.
func (p *Progress) Stop(complete bool) {
	p.stopOnce.Do(func() {
		close(p.stop)
		<-p.done
		if p.frames > 0 {
			if complete {
				p.printer.Progress(p.label, 100)
			}
			p.printer.ProgressDone()
		}
	})
}

// Frames returns how many frames were drawn. Valid after Stop.
func (p *Progress) Frames() int {
	return p.frames
}

// withProgress runs fn under the animation. The real call decides when the
// animation ends.
func (v *Views) withProgress(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	p := StartProgress(v.printer, label, v.interval)
	err := fn(ctx)
	p.Stop(err == nil)
	return err
}
