package engine

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/tsawler/pdflayer/internal/logging"
)

// ErrNoEngine is returned by a Cell that has no init function.
var ErrNoEngine = errors.New("no PDF engine configured")

// InitFunc creates an engine. It runs at most once per successful
// initialisation of a Cell.
type InitFunc func(ctx context.Context) (Engine, error)

// Cell holds a lazily initialised engine shared by every caller.
//
// The first Get starts initialisation. Callers arriving while it runs wait
// on the same completion signal; callers arriving afterwards receive the
// cached engine at once. A failed initialisation is not cached, so the next
// Get tries again.
type Cell struct {
	mu      sync.Mutex
	init    InitFunc
	engine  Engine
	pending *attempt
}

type attempt struct {
	done   chan struct{}
	engine Engine
	err    error
}

// NewCell creates a cell that initialises its engine with fn.
func NewCell(fn InitFunc) *Cell {
	return &Cell{init: fn}
}

// Default is the process-wide cell used when no other cell is supplied.
// The root pdflayer package installs the pdfium engine into it.
var Default = &Cell{}

// SetInit replaces the init function. It has no effect on an engine that
// is already initialised.
func (c *Cell) SetInit(fn InitFunc) {
	c.mu.Lock()
	c.init = fn
	c.mu.Unlock()
}

// Set installs e directly, skipping initialisation.
func (c *Cell) Set(e Engine) {
	c.mu.Lock()
	c.engine = e
	c.mu.Unlock()
}

// Ready reports whether an engine is initialised.
func (c *Cell) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine != nil
}

// Get returns the engine, initialising it on first use. Cancelling ctx
// stops this caller from waiting but does not abort an initialisation
// other callers may be waiting on.
func (c *Cell) Get(ctx context.Context) (Engine, error) {
	c.mu.Lock()
	if c.engine != nil {
		e := c.engine
		c.mu.Unlock()
		return e, nil
	}
	if c.init == nil {
		c.mu.Unlock()
		return nil, ErrNoEngine
	}
	a := c.pending
	if a == nil {
		a = &attempt{done: make(chan struct{})}
		c.pending = a
		go c.run(a, c.init)
	}
	c.mu.Unlock()

	select {
	case <-a.done:
		return a.engine, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cell) run(a *attempt, fn InitFunc) {
	logging.Logger().Debug("initialising PDF engine")
	e, err := fn(context.Background())
	if err == nil && e == nil {
		err = ErrNoEngine
	}

	c.mu.Lock()
	if err == nil {
		c.engine = e
	}
	c.pending = nil
	c.mu.Unlock()

	a.engine, a.err = e, err
	if err != nil {
		a.engine = nil
		logging.Logger().Warn("PDF engine initialisation failed", "error", err)
	} else {
		logging.Logger().Info("PDF engine ready")
	}
	close(a.done)
}

// Close releases the engine if it implements io.Closer and resets the
// cell so the next Get initialises again.
func (c *Cell) Close() error {
	c.mu.Lock()
	e := c.engine
	c.engine = nil
	c.mu.Unlock()

	if closer, ok := e.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
