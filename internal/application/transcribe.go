package application

import (
	"context"
	"errors"
	"time"
)

// ErrNoSpeech reports that Listen timed out without recognizing anything
// intelligible. It is benign: the cycle ends silently.
var ErrNoSpeech = errors.New("no speech detected")

// Transcriber wraps a speech-to-text engine holding the audio input device.
// Listen blocks until speech is recognized or timeout elapses, in which case
// it returns ErrNoSpeech. The session loop makes exactly one Listen call per
// hotkey press and never retries.
type Transcriber interface {
	Listen(ctx context.Context, timeout time.Duration) (string, error)
	Close() error
}
