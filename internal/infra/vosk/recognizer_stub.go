//go:build !portaudio
// +build !portaudio

package vosk

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Recognizer stub when portaudio/vosk are not available.
type Recognizer struct{}

func NewRecognizer(_ string, _ int, _ time.Duration, _ *slog.Logger) (*Recognizer, error) {
	return nil, fmt.Errorf("speech recognition not available: rebuild with -tags portaudio")
}

func (r *Recognizer) Listen(_ context.Context, _ time.Duration) (string, error) {
	return "", fmt.Errorf("speech recognition not available")
}

func (r *Recognizer) Close() error {
	return nil
}
