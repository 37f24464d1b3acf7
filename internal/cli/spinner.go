package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/cartastrutturata/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates the current pipeline stage on a terminal line.
//
// It implements [observability.PipelineHooks]: while registered, every
// stage event replaces the message, so the line reads "Parsing Somma",
// then "Laying out 14 rows", then "Rendering xlsx, svg". Events are
// forwarded to the hooks that were registered before it.
type Spinner struct {
	w       io.Writer
	next    observability.PipelineHooks
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}

	mu      sync.Mutex
	message string
	width   int
	stages  []string
	started bool
	closed  bool
}

func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		next:    observability.NoopPipelineHooks{},
		parent:  ctx,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		message: message,
	}
}

// attach registers s as the pipeline hooks and returns a function that
// restores the previous ones.
func (s *Spinner) attach() (detach func()) {
	prev := observability.Pipeline()
	s.next = prev
	observability.SetPipelineHooks(s)
	return func() { observability.SetPipelineHooks(prev) }
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	if n := len(s.message) + 2; n > s.width {
		s.width = n
	}
	fmt.Fprintf(s.w, "\r%s", line)
}

// Stop ends the animation and clears the line. It may be called repeatedly.
func (s *Spinner) Stop() {
	s.cancel()
	s.mu.Lock()
	started := s.started
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	s.mu.Unlock()
	if started {
		<-s.stopped
	}
	s.clearLine()
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
}

// Cancelled reports whether the parent context ended before Stop.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

// Message returns the text currently shown next to the frame.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Stages lists the stage messages shown so far, oldest first.
func (s *Spinner) Stages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.stages...)
}

func (s *Spinner) show(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	s.stages = append(s.stages, message)
}

func (s *Spinner) OnParseStart(ctx context.Context, title string) {
	s.show("Parsing " + title)
	s.next.OnParseStart(ctx, title)
}

func (s *Spinner) OnParseComplete(ctx context.Context, title string, nodeCount int, d time.Duration, err error) {
	s.next.OnParseComplete(ctx, title, nodeCount, d, err)
}

func (s *Spinner) OnLayoutStart(ctx context.Context, rows int) {
	s.show(fmt.Sprintf("Laying out %d rows", rows))
	s.next.OnLayoutStart(ctx, rows)
}

func (s *Spinner) OnLayoutComplete(ctx context.Context, rows int, d time.Duration) {
	s.next.OnLayoutComplete(ctx, rows, d)
}

func (s *Spinner) OnRenderStart(ctx context.Context, formats []string) {
	s.show("Rendering " + strings.Join(formats, ", "))
	s.next.OnRenderStart(ctx, formats)
}

func (s *Spinner) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	s.next.OnRenderComplete(ctx, formats, d, err)
}
