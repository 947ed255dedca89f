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

// InterruptHandler cancels a run on SIGINT/SIGTERM and tells the user what
// was kept.
type InterruptHandler struct {
	writer     io.Writer
	cancelFunc context.CancelFunc
	command    string
	// sending is set for runs that deliver email; the message then notes that
	// delivered emails were already recorded.
	sending     bool
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler.
func NewInterruptHandler(writer io.Writer, command string) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{
		writer:  writer,
		command: command,
	}
}

// HandleInterrupts sets up signal handling and returns a context that will be
// canceled on interrupt. Signal handling stops when ctx ends.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, sending bool) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.cancelFunc = cancel
	h.sending = sending
	h.mu.Unlock()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			h.interrupt()
		case <-ctx.Done():
		}
	}()

	return ctx
}

func (h *InterruptHandler) interrupt() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.interrupted {
		h.interrupted = true
		h.showInterruptMessage()
	}
	if h.cancelFunc != nil {
		h.cancelFunc()
	}
}

func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n\n" + FormatWarning("Outreach run interrupted!")

	if h.sending {
		msg += "\n" + FormatInfo("Emails already sent are recorded and will not be resent.")
		if h.command != "" {
			msg += "\n" + FormatInfo("Continue with: "+h.command)
		}
	}

	if _, err := fmt.Fprint(h.writer, msg+"\n"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
