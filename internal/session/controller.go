package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"celestialview/internal/reading"
)

var (
	// ErrBusy is returned while a request is outstanding.
	ErrBusy = errors.New("a reading is already in progress")
	// ErrWrongMode is returned when the action belongs to the other mode.
	ErrWrongMode = errors.New("action does not match the active mode")
)

// Reader performs readings against the generative backend.
type Reader interface {
	Fortune(ctx context.Context, req reading.FortuneRequest) (reading.FortuneResponse, error)
	Tarot(ctx context.Context) (reading.TarotResponse, error)
}

// Options настройки контроллера.
type Options struct {
	// Timeout bounds one generative call. Zero means no limit.
	Timeout time.Duration
	// InitialMode defaults to reading.KindFortune.
	InitialMode reading.Kind
	Logger      *slog.Logger
}

// Controller owns one visitor's UI state and maps actions to readings.
// Safe for concurrent use.
type Controller struct {
	reader  Reader
	timeout time.Duration
	logger  *slog.Logger

	mu         sync.Mutex
	mode       reading.Kind
	state      state
	generation uint64
	pending    *Pending
}

// Pending tracks one started request.
type Pending struct {
	generation uint64
	done       chan struct{}
	once       sync.Once
	discarded  bool
	cancel     context.CancelFunc
}

// Done is closed when the outcome is committed or the request is discarded
// by Reset or SwitchMode.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

func (p *Pending) close() {
	p.once.Do(func() { close(p.done) })
}

func NewController(reader Reader, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mode := opts.InitialMode
	if mode == "" {
		mode = reading.KindFortune
	}
	return &Controller{
		reader:  reader,
		timeout: opts.Timeout,
		logger:  logger,
		mode:    mode,
		state:   idle(),
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.snapshot(c.mode)
}

// SwitchMode always returns to Idle, even when mode is already active.
func (c *Controller) SwitchMode(mode reading.Kind) (Snapshot, error) {
	if mode != reading.KindFortune && mode != reading.KindTarot {
		return Snapshot{}, fmt.Errorf("%w: %q", reading.ErrUnknownKind, mode)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.discardLocked("mode switch")
	c.mode = mode
	return c.state.snapshot(c.mode), nil
}

// Reset returns to Idle and drops any outstanding request.
func (c *Controller) Reset() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.discardLocked("reset")
	return c.state.snapshot(c.mode)
}

// SubmitFortune starts a fortune reading. req must already be valid.
func (c *Controller) SubmitFortune(ctx context.Context, req reading.FortuneRequest) (*Pending, error) {
	return c.start(ctx, reading.KindFortune, func(ctx context.Context) (state, error) {
		resp, err := c.reader.Fortune(ctx, req)
		if err != nil {
			return state{}, err
		}
		return fortuneSuccess(newFortuneResult(req, resp)), nil
	})
}

// DrawTarot starts a tarot draw.
func (c *Controller) DrawTarot(ctx context.Context) (*Pending, error) {
	return c.start(ctx, reading.KindTarot, func(ctx context.Context) (state, error) {
		resp, err := c.reader.Tarot(ctx)
		if err != nil {
			return state{}, err
		}
		return tarotSuccess(newTarotResult(resp)), nil
	})
}

func (c *Controller) start(ctx context.Context, kind reading.Kind, call func(context.Context) (state, error)) (*Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != kind {
		return nil, fmt.Errorf("%w: active %s, requested %s", ErrWrongMode, c.mode, kind)
	}
	if c.state.phase == PhaseLoading {
		return nil, ErrBusy
	}

	// Запрос не должен обрываться вместе с HTTP-запросом клиента,
	// только по таймауту или при сбросе.
	callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if c.timeout > 0 {
		var cancelTimeout context.CancelFunc
		callCtx, cancelTimeout = context.WithTimeout(callCtx, c.timeout)
		cancelCall := cancel
		cancel = func() {
			cancelTimeout()
			cancelCall()
		}
	}

	c.generation++
	p := &Pending{generation: c.generation, done: make(chan struct{}), cancel: cancel}
	c.pending = p
	c.state = loading()

	go func() {
		defer cancel()
		next, err := c.run(callCtx, call)
		if err != nil {
			c.logger.Warn("reading failed", "kind", kind, "error", err)
			next = failed(reading.UserMessage(kind, err))
		}
		c.commit(p, kind, next)
	}()

	return p, nil
}

func (c *Controller) run(ctx context.Context, call func(context.Context) (state, error)) (next state, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic during reading: %v", rec)
		}
	}()
	return call(ctx)
}

// commit applies next only if p is still the outstanding request for kind.
func (c *Controller) commit(p *Pending, kind reading.Kind, next state) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer p.close()

	if c.pending != p || c.generation != p.generation || c.mode != kind || c.state.phase != PhaseLoading {
		c.logger.Debug("stale reading dropped", "kind", kind, "generation", p.generation)
		return
	}

	c.state = next
	c.pending = nil
}

func (c *Controller) discardLocked(reason string) {
	if c.pending != nil {
		c.logger.Debug("outstanding reading discarded", "reason", reason, "generation", c.pending.generation)
		c.pending.discarded = true
		c.pending.cancel()
		c.pending.close()
		c.pending = nil
	}
	c.state = idle()
}

// Discarded reports whether the request was dropped before its outcome
// could be committed. Valid after Done is closed.
func (p *Pending) Discarded() bool {
	<-p.done
	return p.discarded
}
