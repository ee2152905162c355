// Package timer owns the craving countdown. It is presentation-side
// machinery: a single recurring job ticks every active countdown, and a
// countdown that expires or is stopped fires its completion callback exactly
// once. The metrics engine never sees any of this — it only receives the one
// CravingEvent the completion handler records.
package timer

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// TickFunc receives the remaining time on every tick.
type TickFunc func(remaining time.Duration)

// DoneFunc receives the elapsed episode length and whether the user smoked.
// expired is true when the countdown ran out on its own.
type DoneFunc func(elapsed time.Duration, smoked, expired bool)

type countdown struct {
	token     string
	startedAt time.Time
	deadline  time.Time
	onTick    TickFunc
	onDone    DoneFunc
}

// Manager runs at most one countdown per chat.
type Manager struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	sched  gocron.Scheduler
	active map[int64]*countdown
}

// New builds a manager on the given clock. Tests pass a fake clock and drive
// Tick directly.
func New(clock clockwork.Clock) *Manager {
	return &Manager{
		clock:  clock,
		active: make(map[int64]*countdown),
	}
}

// Run attaches the recurring one-second tick job and starts the scheduler.
func (m *Manager) Run() error {
	s, err := gocron.NewScheduler(gocron.WithClock(m.clock))
	if err != nil {
		return err
	}
	if _, err := s.NewJob(
		gocron.DurationJob(time.Second),
		gocron.NewTask(m.Tick),
	); err != nil {
		return err
	}
	s.Start()
	m.mu.Lock()
	m.sched = s
	m.mu.Unlock()
	return nil
}

// Shutdown stops the scheduler. Active countdowns are dropped without firing.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	s := m.sched
	m.sched = nil
	m.active = make(map[int64]*countdown)
	m.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Shutdown()
}

// Start begins a countdown for the chat, identified by token. A countdown
// already running for the same chat is replaced without firing its
// callbacks. Stop only acts when given the same token, so a button from a
// superseded countdown message cannot end the current one.
func (m *Manager) Start(chatID int64, token string, total time.Duration, onTick TickFunc, onDone DoneFunc) {
	now := m.clock.Now()
	m.mu.Lock()
	m.active[chatID] = &countdown{
		token:     token,
		startedAt: now,
		deadline:  now.Add(total),
		onTick:    onTick,
		onDone:    onDone,
	}
	m.mu.Unlock()
}

// Active reports whether the chat has a countdown running.
func (m *Manager) Active(chatID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[chatID]
	return ok
}

// Stop ends the chat's countdown early. Returns false — and fires nothing —
// if no countdown is running or the token does not match the one it was
// started with (a stale button press).
func (m *Manager) Stop(chatID int64, token string, smoked bool) bool {
	now := m.clock.Now()
	m.mu.Lock()
	c, ok := m.active[chatID]
	if ok && c.token != token {
		ok = false
	}
	if ok {
		delete(m.active, chatID)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	c.onDone(now.Sub(c.startedAt), smoked, false)
	return true
}

// Tick advances every active countdown once. Expired countdowns are removed
// before their callback runs, so a concurrent Stop cannot fire a second time.
func (m *Manager) Tick() {
	now := m.clock.Now()

	type pendingTick struct {
		fn        TickFunc
		remaining time.Duration
	}
	var ticks []pendingTick
	var expired []*countdown

	m.mu.Lock()
	for chatID, c := range m.active {
		if !now.Before(c.deadline) {
			delete(m.active, chatID)
			expired = append(expired, c)
			continue
		}
		if c.onTick != nil {
			ticks = append(ticks, pendingTick{fn: c.onTick, remaining: c.deadline.Sub(now)})
		}
	}
	m.mu.Unlock()

	for _, t := range ticks {
		t.fn(t.remaining)
	}
	for _, c := range expired {
		// Surviving the full countdown counts as resisting.
		c.onDone(c.deadline.Sub(c.startedAt), false, true)
	}
}
