package eventlog

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Log is the append-only event sink: one line per event, `[HH:MM:SS] msg`,
// truncated at open. The program never reads it back, and a failed write is
// dropped silently rather than disturbing the session loop.
type Log struct {
	mu sync.Mutex
	f  *os.File
}

func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &Log{f: f}, nil
}

func (l *Log) Event(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.f, "[%s] %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}

func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
