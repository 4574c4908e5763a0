package activation

import (
	"context"
	"sync"
	"time"

	"github.com/foliopress/foliopress/internal/clock"
	"go.uber.org/zap"
)

// StepState is the lifecycle of a single progress step.
type StepState string

const (
	StateIdle   StepState = "idle"
	StateActive StepState = "active"
	StateDone   StepState = "done"
	StateError  StepState = "error"
)

// StepID names the five ordered publish progress steps.
type StepID string

const (
	StepPrepare   StepID = "prepare"
	StepUpload    StepID = "upload"
	StepConfigure StepID = "configure"
	StepSave      StepID = "save"
	StepActivate  StepID = "activate"
)

const (
	LabelLive        = "Your site is live"
	LabelPropagating = "Still propagating, check back shortly"
)

type Step struct {
	ID    StepID    `json:"id"`
	State StepState `json:"state"`
	Label string    `json:"label,omitempty"`
}

// Progress is a point-in-time snapshot of the watcher.
type Progress struct {
	Steps     []Step        `json:"steps"`
	Homepage  string        `json:"homepage"`
	Remaining time.Duration `json:"remaining"`
	Percent   int           `json:"percent"`
	Live      bool          `json:"live"`
	Finished  bool          `json:"finished"`
}

// LivenessFunc resolves whether a published URL serves a page yet.
type LivenessFunc func(ctx context.Context, url string) (bool, error)

type Config struct {
	Interval time.Duration
	Budget   time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 3 * time.Second
	}
	if c.Budget <= 0 {
		c.Budget = 90 * time.Second
	}
	return c
}

// Watcher drives the five-step publish progress display. The first four
// steps are cosmetic: the server finished the real work before the publish
// response returned, so Start advances them immediately. Only "activate"
// waits on anything real: the pages site coming live.
type Watcher struct {
	mu sync.Mutex

	clock    clock.Clock
	check    LivenessFunc
	cfg      Config
	log      *zap.Logger
	onUpdate func(Progress)

	steps    []Step
	homepage string
	started  time.Time
	live     bool
	finished bool
}

type Option func(*Watcher)

// WithOnUpdate registers a callback fired after every state change.
func WithOnUpdate(fn func(Progress)) Option {
	return func(w *Watcher) {
		w.onUpdate = fn
	}
}

func NewWatcher(clk clock.Clock, check LivenessFunc, cfg Config, log *zap.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		clock: clk,
		check: check,
		cfg:   cfg.withDefaults(),
		log:   log.Named("activation.watcher"),
		steps: []Step{
			{ID: StepPrepare, State: StateIdle},
			{ID: StepUpload, State: StateIdle},
			{ID: StepConfigure, State: StateIdle},
			{ID: StepSave, State: StateIdle},
			{ID: StepActivate, State: StateIdle},
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start records the publish response and advances the cosmetic steps,
// leaving "activate" active and the poll budget running.
func (w *Watcher) Start(homepage string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.homepage = homepage
	w.started = w.clock.Now()
	for i := range w.steps {
		if w.steps[i].ID == StepActivate {
			w.steps[i].State = StateActive
			break
		}
		w.steps[i].State = StateDone
	}
	w.notifyLocked()
}

// Fail marks whichever step is currently active as errored and halts the
// watcher. No automatic retry follows.
func (w *Watcher) Fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.finished {
		return
	}
	for i := range w.steps {
		if w.steps[i].State == StateActive {
			w.steps[i].State = StateError
			if err != nil {
				w.steps[i].Label = err.Error()
			}
			break
		}
	}
	w.finished = true
	w.notifyLocked()
}

// Tick runs one poll iteration: probe the homepage, then either finish
// live, keep waiting, or soft-finish once the budget is spent. A probe
// error counts as not-live rather than failing the step.
func (w *Watcher) Tick(ctx context.Context) Progress {
	w.mu.Lock()
	if w.finished || w.homepage == "" {
		p := w.progressLocked()
		w.mu.Unlock()
		return p
	}
	homepage := w.homepage
	w.mu.Unlock()

	live, err := w.check(ctx, homepage)
	if err != nil {
		w.log.Debug("liveness probe failed", zap.Error(err))
		live = false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.finished {
		return w.progressLocked()
	}

	if live {
		w.finishActivateLocked(true, LabelLive)
	} else if w.elapsedLocked() >= w.cfg.Budget {
		// soft timeout: the site exists, propagation just outran the
		// budget, so finish as done rather than as an error
		w.finishActivateLocked(false, LabelPropagating)
	}

	p := w.progressLocked()
	w.notifyLocked()
	return p
}

// Run polls on the configured cadence until the watcher finishes or ctx
// is canceled. The final progress is returned either way.
func (w *Watcher) Run(ctx context.Context) Progress {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return w.Progress()
		case <-ticker.C:
			if p := w.Tick(ctx); p.Finished {
				return p
			}
		}
	}
}

// Progress returns the current snapshot.
func (w *Watcher) Progress() Progress {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.progressLocked()
}

func (w *Watcher) finishActivateLocked(live bool, label string) {
	for i := range w.steps {
		if w.steps[i].ID == StepActivate {
			w.steps[i].State = StateDone
			w.steps[i].Label = label
			break
		}
	}
	w.live = live
	w.finished = true
}

func (w *Watcher) elapsedLocked() time.Duration {
	if w.started.IsZero() {
		return 0
	}
	return w.clock.Now().Sub(w.started)
}

func (w *Watcher) progressLocked() Progress {
	steps := make([]Step, len(w.steps))
	copy(steps, w.steps)

	elapsed := w.elapsedLocked()
	remaining := w.cfg.Budget - elapsed
	if remaining < 0 || w.finished {
		remaining = 0
	}

	percent := 0
	if w.cfg.Budget > 0 {
		percent = int(elapsed * 100 / w.cfg.Budget)
	}
	if percent > 100 || w.finished {
		percent = 100
	}

	return Progress{
		Steps:     steps,
		Homepage:  w.homepage,
		Remaining: remaining,
		Percent:   percent,
		Live:      w.live,
		Finished:  w.finished,
	}
}

func (w *Watcher) notifyLocked() {
	if w.onUpdate == nil {
		return
	}
	w.onUpdate(w.progressLocked())
}
