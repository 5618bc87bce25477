// Package shutdown cancels a run on SIGINT/SIGTERM and runs registered
// cleanup in reverse order.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// Callback is called during shutdown.
type Callback func(ctx context.Context) error

// Config holds shutdown configuration.
type Config struct {
	// Timeout bounds each cleanup callback.
	Timeout time.Duration
	Signals []os.Signal
	// OnSignal is called when a signal, not a normal Shutdown, starts the
	// shutdown.
	OnSignal func(os.Signal)
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout: 5 * time.Second,
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// Handler owns the run context.
type Handler struct {
	mu        sync.Mutex
	callbacks []namedCallback

	shuttingDown atomic.Bool
	done         chan struct{}
	errs         []error
	timeout      time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	sigChan  chan os.Signal
	onSignal func(os.Signal)
}

type namedCallback struct {
	name string
	fn   Callback
}

// New creates a handler and starts listening for signals.
func New(cfg Config) *Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if len(cfg.Signals) == 0 {
		cfg.Signals = DefaultConfig().Signals
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Handler{
		done:     make(chan struct{}),
		timeout:  cfg.Timeout,
		ctx:      ctx,
		cancel:   cancel,
		sigChan:  make(chan os.Signal, 1),
		onSignal: cfg.OnSignal,
	}

	signal.Notify(h.sigChan, cfg.Signals...)
	go h.listen()

	return h
}

func (h *Handler) listen() {
	select {
	case sig := <-h.sigChan:
		if h.onSignal != nil {
			h.onSignal(sig)
		}
		h.Shutdown()
	case <-h.ctx.Done():
	}
}

// Register adds a cleanup callback. Callbacks run last-registered first.
func (h *Handler) Register(name string, fn Callback) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks = append(h.callbacks, namedCallback{name: name, fn: fn})
}

// Context is cancelled as soon as shutdown begins.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// IsShuttingDown reports whether shutdown has begun.
func (h *Handler) IsShuttingDown() bool {
	return h.shuttingDown.Load()
}

// Errors waits for shutdown to complete and returns the callback errors in
// the order the callbacks ran.
func (h *Handler) Errors() []error {
	<-h.done
	return h.errs
}

// Shutdown cancels the context, stops signal delivery and runs the
// callbacks. Only the first call does anything.
func (h *Handler) Shutdown() {
	if !h.shuttingDown.CompareAndSwap(false, true) {
		return
	}

	h.cancel()
	signal.Stop(h.sigChan)

	h.mu.Lock()
	callbacks := make([]namedCallback, len(h.callbacks))
	copy(callbacks, h.callbacks)
	h.mu.Unlock()

	for i := len(callbacks) - 1; i >= 0; i-- {
		if err := h.run(callbacks[i]); err != nil {
			h.errs = append(h.errs, err)
		}
	}

	close(h.done)
}

func (h *Handler) run(cb namedCallback) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- cb.fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return &TimeoutError{CallbackName: cb.name}
	}
}

// TimeoutError is returned when a callback outlives the timeout.
type TimeoutError struct {
	CallbackName string
}

func (e *TimeoutError) Error() string {
	return "shutdown callback timed out: " + e.CallbackName
}
