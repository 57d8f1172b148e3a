package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// spinnerFrames cycle through the quadrants of a tile.
var spinnerFrames = []string{"▖", "▘", "▝", "▗"}

const spinnerInterval = 100 * time.Millisecond

// spinner animates a status line with the elapsed time while a command
// works. It draws only when w is a terminal.
type spinner struct {
	w       io.Writer
	message string
	animate bool

	mu      sync.Mutex
	start   time.Time
	width   int
	cancel  context.CancelFunc
	stopped chan struct{}
}

func newSpinner(w io.Writer, message string) *spinner {
	return &spinner{w: w, message: message, animate: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Start animates until Stop is called or ctx is done.
func (s *spinner) Start(ctx context.Context) {
	if !s.animate || s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.stopped = make(chan struct{})
	s.start = time.Now()
	go s.run(ctx)
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.draw(spinnerFrames[i%len(spinnerFrames)])
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-ticker.C:
		}
	}
}

func (s *spinner) draw(frame string) {
	elapsed := time.Since(s.start).Truncate(spinnerInterval)
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message+" "+elapsed.String())

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.w, "\r"+line)
	s.width = max(s.width, lipgloss.Width(line))
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.width)+"\r")
	}
}

// Stop ends the animation and clears the line. Extra calls do nothing.
func (s *spinner) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.stopped
	s.cancel = nil
}

// Fail stops the spinner and prints msg as an error.
func (s *spinner) Fail(msg string) {
	s.Stop()
	printError("%s", msg)
}
