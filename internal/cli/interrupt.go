package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler turns SIGINT and SIGTERM into context cancellation and
// tells the user what state the interrupted command left behind.
type InterruptHandler struct {
	writer      io.Writer
	notify      func(chan<- os.Signal)
	activity    string
	hint        string
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a handler that reports to writer, or stdout
// when writer is nil.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{
		writer:   writer,
		activity: "Payment run",
		notify: func(c chan<- os.Signal) {
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		},
	}
}

// HandleInterrupts returns a context canceled on the first signal. activity
// names what was interrupted; hint, if set, says what state remains.
// Canceling the parent is not an interrupt.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, activity, hint string) context.Context {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	if activity != "" {
		h.activity = activity
	}
	h.hint = hint
	h.mu.Unlock()

	signals := make(chan os.Signal, 1)
	h.notify(signals)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			h.mu.Lock()
			h.interrupted = true
			msg := interruptMessage(h.activity, h.hint)
			h.mu.Unlock()
			if _, err := fmt.Fprint(h.writer, msg); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx
}

func interruptMessage(activity, hint string) string {
	msg := "\n\n" + FormatWarning(activity+" interrupted!")
	if hint != "" {
		msg += "\n" + FormatInfo(hint)
	}
	return msg + "\n" + FormatInfo("Nothing was lost. See you next run!") + "\n"
}

// WasInterrupted reports whether a signal arrived.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
