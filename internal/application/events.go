package application

// EventLog is the append-only per-event sink (one line per event, never read
// back by the program).
type EventLog interface {
	Event(format string, args ...any)
}

type NoopEventLog struct{}

func (n *NoopEventLog) Event(_ string, _ ...any) {}
