// Package signal cancels the workon root context on SIGINT or SIGTERM so
// running conda, dvc and git subprocesses are killed with it.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels its context when the process is asked to stop.
type Handler struct {
	ctx     context.Context //nolint:containedctx // handler owns the context lifecycle
	cancel  context.CancelFunc
	signals chan os.Signal
	stopped chan struct{}
	stop    sync.Once

	mu       sync.Mutex
	received os.Signal
}

// NewHandler starts listening for SIGINT and SIGTERM.
//
//	h := signal.NewHandler(ctx)
//	err := cli.Execute(h.Context(), info)
//	h.Stop()
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:     ctx,
		cancel:  cancel,
		signals: make(chan os.Signal, 1),
		stopped: make(chan struct{}),
	}

	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context is canceled by the first signal, by Stop, or with its parent.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Received returns the first signal received, or nil.
func (h *Handler) Received() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

// Stop stops listening and cancels the context. It is safe to call twice.
func (h *Handler) Stop() {
	h.stop.Do(func() {
		signal.Stop(h.signals)
		close(h.stopped)
		h.cancel()
	})
}

func (h *Handler) handleSignal(sig os.Signal) {
	h.mu.Lock()
	if h.received == nil {
		h.received = sig
	}
	h.mu.Unlock()
	h.cancel()
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.stopped:
			return
		case sig := <-h.signals:
			h.handleSignal(sig)
		}
	}
}
