package hotkey

import (
	"fmt"
	"log/slog"

	hook "github.com/robotn/gohook"
)

// Monitor tracks talk/quit key level state from the global keyboard hook.
// All methods are called from the single session goroutine: each read pumps
// whatever events the hook buffered since the last read, then reports the
// resulting level state. Reads never block and never fail; once the hook
// channel closes, state freezes at "not pressed".
type Monitor struct {
	talkCode uint16
	quitCode uint16
	logger   *slog.Logger

	events   chan hook.Event
	talkDown bool
	quit     bool
}

func NewMonitor(talkKey, quitKey string, logger *slog.Logger) (*Monitor, error) {
	talkCode, ok := hook.Keycode[talkKey]
	if !ok {
		return nil, fmt.Errorf("unknown talk key %q", talkKey)
	}
	quitCode, ok := hook.Keycode[quitKey]
	if !ok {
		return nil, fmt.Errorf("unknown quit key %q", quitKey)
	}

	m := &Monitor{
		talkCode: talkCode,
		quitCode: quitCode,
		logger:   logger,
	}
	m.events = hook.Start()

	logger.Info("hotkey monitor started", "talkKey", talkKey, "quitKey", quitKey)
	return m, nil
}

func (m *Monitor) TalkKeyDown() bool {
	m.pump(false)
	return m.talkDown
}

func (m *Monitor) QuitRequested() bool {
	m.pump(false)
	return m.quit
}

// Drain flushes input buffered while a cycle was running. Talk key level is
// kept current, but quit presses made mid-cycle are discarded: quit is only
// honored from the idle poll.
func (m *Monitor) Drain() {
	m.pump(true)
	m.quit = false
}

func (m *Monitor) Close() error {
	hook.End()
	return nil
}

func (m *Monitor) pump(discardQuit bool) {
	for {
		select {
		case ev, ok := <-m.events:
			if !ok {
				m.talkDown = false
				return
			}
			m.apply(ev, discardQuit)
		default:
			return
		}
	}
}

func (m *Monitor) apply(ev hook.Event, discardQuit bool) {
	switch ev.Kind {
	case hook.KeyDown, hook.KeyHold:
		switch ev.Keycode {
		case m.talkCode:
			m.talkDown = true
		case m.quitCode:
			if !discardQuit {
				m.quit = true
			}
		}
	case hook.KeyUp:
		if ev.Keycode == m.talkCode {
			m.talkDown = false
		}
	}
}
