// Package netmon tracks connectivity as one Online/Offline state fed by
// two independent signal sources: platform-reported events (SetOnline)
// and a periodic reachability probe. The probe runs regardless of the
// reported state, because the platform signal is known to lie (e.g.
// reports online behind a captive portal).
package netmon

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pinger issues the reachability probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor tracks the connectivity state and fires registered triggers
// on every transition to Online and on every successful probe while
// online. Triggers run in their own goroutine: signals are observed,
// never awaited.
type Monitor struct {
	mu       sync.Mutex
	pinger   Pinger
	interval time.Duration
	logger   *slog.Logger

	online   bool
	triggers []func()

	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// New creates a monitor. interval is the fixed probe period.
func New(pinger Pinger, interval time.Duration, logger *slog.Logger) *Monitor {
	return &Monitor{
		pinger:   pinger,
		interval: interval,
		logger:   logger,
	}
}

// OnOnline registers a trigger fired on every transition to Online and
// on every successful probe tick. Триггеры независимы: падение или
// задержка одного не мешает другим. Триггер сам решает, есть ли ему
// работа на этом тике. Регистрация до Start, перерегистраций на лету
// нет.
func (m *Monitor) OnOnline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers = append(m.triggers, fn)
}

// Online returns the current state
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline feeds a platform-reported connectivity event. Платформенные
// события приходят пачками, поэтому триггеры дёргаются только на
// переходе offline→online.
func (m *Monitor) SetOnline(online bool) {
	if m.setState(online, "platform") && online {
		m.notify()
	}
}

// Start begins periodic probing. The first probe runs immediately.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go m.run(ctx)
}

// Stop detaches the probe loop and waits for it to exit
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	cancel()
	<-done
}

// run крутит периодический probe до отмены контекста
func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

// probe выполняет один reachability probe и применяет результат
func (m *Monitor) probe(ctx context.Context) {
	err := m.pinger.Ping(ctx)
	if ctx.Err() != nil {
		return
	}
	online := err == nil
	m.setState(online, "probe")

	// Каждый успешный probe дёргает триггеры, а не только переход: на
	// этом тике живут периодический pull справочника и повторная
	// отправка batch после исчерпанных retry
	if online {
		m.notify()
	}
}

// setState применяет новое состояние, сообщает был ли переход
func (m *Monitor) setState(online bool, source string) bool {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return false
	}
	m.online = online
	m.mu.Unlock()

	m.logger.Info("Connectivity changed", "online", online, "source", source)
	return true
}

// notify запускает все зарегистрированные триггеры, каждый в своей горутине
func (m *Monitor) notify() {
	m.mu.Lock()
	triggers := m.triggers
	m.mu.Unlock()

	for _, fn := range triggers {
		go fn()
	}
}
