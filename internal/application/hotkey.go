package application

// HotkeyMonitor reports the current level state of the talk and quit keys.
// Reads are non-blocking and never fail: an implementation that cannot read
// the keyboard reports "not pressed" so the loop stays alive. Edge detection
// is the session loop's job, not the monitor's.
type HotkeyMonitor interface {
	TalkKeyDown() bool
	QuitRequested() bool

	// Drain discards buffered key events so stale input from one cycle does
	// not leak into the next.
	Drain()
}
