package formatter

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner redraws a one-line status on w while report generation or an
// upload blocks the session. Frames and speed come from a bubbles spinner.
type Spinner struct {
	w      io.Writer
	label  string
	frames spinner.Spinner

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{w: w, label: label, frames: spinner.MiniDot}
}

func (s *Spinner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.loop(ctx)
}

func (s *Spinner) loop(ctx context.Context) {
	defer s.wg.Done()
	fps := s.frames.FPS
	if fps <= 0 {
		fps = 100 * time.Millisecond
	}
	tick := time.NewTicker(fps)
	defer tick.Stop()

	frame := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-tick.C:
			f := s.frames.Frames[frame%len(s.frames.Frames)]
			fmt.Fprintf(s.w, "\r  %s %s…", StylePurple.Render(f), Dim(s.label))
			frame++
		}
	}
}

// Stop clears the line. Calling it again, or before Start, does nothing.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		s.wg.Wait()
	})
}

// StartSpinner starts a spinner and returns its Stop.
func StartSpinner(w io.Writer, label string) func() {
	s := NewSpinner(w, label)
	s.Start()
	return s.Stop
}
