// Package timer implements the study-session countdown: a small state
// machine over Idle/Running/Paused driven by one-second ticks while running.
// Remaining time is decremented per tick rather than recomputed from
// wall-clock deltas; second-level drift across long pause/resume cycles is
// accepted, since sessions are measured in minutes.
package timer

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"studybank/internal/domain"
)

var (
	// ErrClosed is returned by control calls after Close.
	ErrClosed = errors.New("timer closed")
	// ErrInvalidDuration is returned when starting with no usable duration.
	ErrInvalidDuration = errors.New("duration must be at least one minute")
)

// Completion describes a countdown that reached zero.
type Completion struct {
	FolderID        string    `json:"folderId"`
	DurationMinutes int       `json:"durationMinutes"`
	FinishedAt      time.Time `json:"finishedAt"`
}

// Notifier receives the one-shot completion event. A nil notifier is skipped
// silently; the completion log line is unconditional and never depends on a
// notifier being attached.
type Notifier interface {
	TimerFinished(Completion)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Completion)

func (f NotifierFunc) TimerFinished(c Completion) { f(c) }

// Config wires a Timer's collaborators. Zero values get working defaults;
// Clock and Interval exist for deterministic tests.
type Config struct {
	Notifier Notifier
	OnTick   func(domain.StudySession)
	Logger   *slog.Logger
	Clock    func() time.Time
	Interval time.Duration
}

// Timer is a single study-session countdown. It is owned by exactly one view
// instance and must be Closed when that view goes away. The tick schedule is
// held only while Running and is released on every transition that leaves
// Running, including completion and Close.
type Timer struct {
	mu       sync.Mutex
	notifier Notifier
	onTick   func(domain.StudySession)
	log      *slog.Logger
	clock    func() time.Time
	interval time.Duration

	folderID        string
	durationMinutes int
	remaining       int // seconds
	mode            domain.TimerMode
	startedAt       time.Time

	ticker *time.Ticker
	done   chan struct{}
	closed bool
}

func New(cfg Config) *Timer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Timer{
		notifier: cfg.Notifier,
		onTick:   cfg.OnTick,
		log:      cfg.Logger,
		clock:    cfg.Clock,
		interval: cfg.Interval,
		mode:     domain.TimerIdle,
	}
}

// Start begins a countdown from Idle or resumes from Paused. From Idle with
// no remaining time, remaining is initialized to minutes*60; resuming keeps
// the frozen remaining value untouched. Starting while already Running is a
// no-op.
func (t *Timer) Start(folderID string, minutes int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}

	switch t.mode {
	case domain.TimerRunning:
		return nil
	case domain.TimerPaused:
		t.mode = domain.TimerRunning
		t.startedAt = t.clock()
		t.startTickingLocked()
		return nil
	default: // idle
		if t.remaining == 0 {
			if minutes < 1 {
				return ErrInvalidDuration
			}
			t.durationMinutes = minutes
			t.remaining = minutes * 60
		}
		t.folderID = folderID
		t.mode = domain.TimerRunning
		t.startedAt = t.clock()
		t.startTickingLocked()
		return nil
	}
}

// Pause freezes the countdown at its last computed value.
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if t.mode != domain.TimerRunning {
		return nil
	}
	t.stopTickingLocked()
	t.mode = domain.TimerPaused
	return nil
}

// Stop returns to Idle and clears both the remaining time and the configured
// duration.
func (t *Timer) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	t.stopTickingLocked()
	t.mode = domain.TimerIdle
	t.remaining = 0
	t.durationMinutes = 0
	return nil
}

// Reset refills the remaining time to the full configured duration without
// changing the run mode; ticking continues if it was running.
func (t *Timer) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	t.remaining = t.durationMinutes * 60
	return nil
}

// Snapshot returns the current session state.
func (t *Timer) Snapshot() domain.StudySession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Close tears down the tick schedule and renders the timer inert. It is
// idempotent and safe to call from any state.
func (t *Timer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	t.stopTickingLocked()
	t.mode = domain.TimerIdle
}

// Tick advances the countdown by one second. The internal ticker calls this
// while Running; tests may call it directly. Outside Running it is a no-op,
// which also makes the completion side effect one-shot: the transition to
// Idle happens under the lock before the notifier runs.
func (t *Timer) Tick() {
	t.mu.Lock()
	if t.mode != domain.TimerRunning {
		t.mu.Unlock()
		return
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining > 0 {
		snap := t.snapshotLocked()
		onTick := t.onTick
		t.mu.Unlock()
		if onTick != nil {
			onTick(snap)
		}
		return
	}

	// Completed: release the schedule and return to Idle before firing the
	// side effect.
	t.stopTickingLocked()
	t.mode = domain.TimerIdle
	completion := Completion{
		FolderID:        t.folderID,
		DurationMinutes: t.durationMinutes,
		FinishedAt:      t.clock(),
	}
	snap := t.snapshotLocked()
	notifier := t.notifier
	onTick := t.onTick
	t.mu.Unlock()

	t.log.Info("study session finished",
		"folderID", completion.FolderID,
		"durationMinutes", completion.DurationMinutes)
	if onTick != nil {
		onTick(snap)
	}
	if notifier != nil {
		notifier.TimerFinished(completion)
	}
}

func (t *Timer) snapshotLocked() domain.StudySession {
	return domain.StudySession{
		FolderID:         t.folderID,
		DurationMinutes:  t.durationMinutes,
		RemainingSeconds: t.remaining,
		Mode:             t.mode,
		StartedAt:        t.startedAt,
	}
}

func (t *Timer) startTickingLocked() {
	if t.ticker != nil {
		return
	}
	t.ticker = time.NewTicker(t.interval)
	t.done = make(chan struct{})
	go t.run(t.ticker, t.done)
}

func (t *Timer) stopTickingLocked() {
	if t.ticker == nil {
		return
	}
	t.ticker.Stop()
	close(t.done)
	t.ticker = nil
	t.done = nil
}

func (t *Timer) run(ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}
