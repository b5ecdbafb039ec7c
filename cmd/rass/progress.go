package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/LeviLovie/rass"
)

var descLength = 24

// progressBar renders archive progress events on stderr using mpb. It stays
// silent when disabled or when stderr is not a terminal.
type progressBar struct {
	mu          sync.Mutex
	container   *mpb.Progress
	bar         *mpb.Bar
	enabled     bool
	description string
}

func newProgressBar(total int, enabled bool) *progressBar {
	p := &progressBar{enabled: enabled && isTerminal()}
	if !p.enabled {
		return p
	}

	fmt.Fprintln(os.Stderr)

	p.container = mpb.New(
		mpb.WithOutput(os.Stderr),
		mpb.WithWidth(64),
		mpb.WithRefreshRate(100*time.Millisecond),
	)
	p.bar = p.container.New(int64(total),
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string {
				p.mu.Lock()
				desc := p.description
				p.mu.Unlock()
				if len(desc) > descLength {
					return desc[:descLength-2] + ".."
				}
				return desc
			}, decor.WC{W: descLength, C: decor.DindentRight}),
			decor.Name("  "),
			decor.CountersNoUnit("%d/%d", decor.WC{C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
		),
	)
	return p
}

// Observe is a rass.ProgressFunc feeding the bar. It is safe for the
// concurrent calls extraction workers make.
func (p *progressBar) Observe(ev rass.ProgressEvent) {
	if !p.enabled || p.bar == nil {
		return
	}
	p.mu.Lock()
	p.description = ev.Path
	p.mu.Unlock()
	// Totals arrive with the events, so a bar created before enumeration
	// finished still ends up with the right denominator.
	if ev.FilesTotal > 0 {
		p.bar.SetTotal(int64(ev.FilesTotal), false)
	}
	p.bar.SetCurrent(int64(ev.FilesDone))
}

// Finish waits for the bar to drain and releases the terminal.
func (p *progressBar) Finish() {
	if !p.enabled || p.container == nil {
		return
	}
	p.bar.SetTotal(-1, true)
	p.container.Wait()
	fmt.Fprintln(os.Stderr)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
