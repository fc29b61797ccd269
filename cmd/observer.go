package cmd

import (
	"fmt"
	"io"

	"github.com/driftscan/driftscan/internal/scan"
)

// consoleObserver adapts the engine's event stream to a terminal: progress
// as a single rewritten line, terminal delivery handed to Wait. It is the
// CLI's implementation of the observer boundary the engine is written
// against.
type consoleObserver struct {
	w     io.Writer
	quiet bool
	wrote bool
	done  chan terminalEvent
}

type terminalEvent struct {
	res *scan.Result
	err error
}

func newConsoleObserver(w io.Writer, quiet bool) *consoleObserver {
	return &consoleObserver{
		w:     w,
		quiet: quiet,
		done:  make(chan terminalEvent, 1),
	}
}

// Wait blocks until the scan reaches a terminal state.
func (o *consoleObserver) Wait() (*scan.Result, error) {
	ev := <-o.done
	return ev.res, ev.err
}

func (o *consoleObserver) Progress(p scan.Progress) {
	if o.quiet || p.Status != scan.StatusScanning {
		return
	}
	line := fmt.Sprintf("%d files, %d dirs, %s", p.FilesScanned, p.DirectoriesScanned, p.BytesScannedFormatted)
	if p.ProgressPercent != nil {
		line = fmt.Sprintf("%s (%.1f%%)", line, *p.ProgressPercent)
	}
	fmt.Fprintf(o.w, "\r\x1b[K%s %s", progressStyle.Render(line), dimStyle.Render(p.CurrentPath))
	o.wrote = true
}

func (o *consoleObserver) Completed(r *scan.Result) {
	o.clearLine()
	o.done <- terminalEvent{res: r}
}

func (o *consoleObserver) Failed(scanID string, err error) {
	o.clearLine()
	o.done <- terminalEvent{err: err}
}

func (o *consoleObserver) clearLine() {
	if o.wrote {
		fmt.Fprint(o.w, "\r\x1b[K")
	}
}
