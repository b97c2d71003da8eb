//go:build portaudio
// +build portaudio

package vosk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	voskapi "github.com/alphacep/vosk-api/go"
	"github.com/gordonklaus/portaudio"

	"github.com/illsk1lls/Grokory/internal/application"
)

const framesPerBuffer = 1024

// Recognizer wraps an offline vosk model fed from the default microphone.
// It is constructed once at startup and holds the audio input device for the
// process lifetime; Listen starts and stops the capture stream around each
// call.
type Recognizer struct {
	model  *voskapi.VoskModel
	rec    *voskapi.VoskRecognizer
	stream *portaudio.Stream
	frames []int16

	sampleRate     int
	initialSilence time.Duration
	logger         *slog.Logger
}

func NewRecognizer(modelPath string, sampleRate int, initialSilence time.Duration, logger *slog.Logger) (*Recognizer, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}

	dev, err := portaudio.DefaultInputDevice()
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", ErrNoInputDevice, err)
	}
	if dev.MaxInputChannels < 1 {
		portaudio.Terminate()
		return nil, ErrNoInputDevice
	}

	model, err := voskapi.NewModel(modelPath)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("loading vosk model %q: %w", modelPath, err)
	}

	rec, err := voskapi.NewRecognizer(model, float64(sampleRate))
	if err != nil {
		model.Free()
		portaudio.Terminate()
		return nil, fmt.Errorf("creating vosk recognizer: %w", err)
	}

	frames := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(frames), frames)
	if err != nil {
		rec.Free()
		model.Free()
		portaudio.Terminate()
		return nil, fmt.Errorf("opening capture stream: %w", err)
	}

	logger.Info("recognizer ready", "model", modelPath, "sampleRate", sampleRate, "device", dev.Name)

	return &Recognizer{
		model:          model,
		rec:            rec,
		stream:         stream,
		frames:         frames,
		sampleRate:     sampleRate,
		initialSilence: initialSilence,
		logger:         logger,
	}, nil
}

// Listen blocks until speech is recognized or timeout elapses. If nothing at
// all is heard within the initial-silence window the call gives up early.
// Exactly one Listen runs per hotkey press; there is no internal retry.
func (r *Recognizer) Listen(ctx context.Context, timeout time.Duration) (string, error) {
	r.rec.Reset()

	if err := r.stream.Start(); err != nil {
		return "", fmt.Errorf("starting capture stream: %w", err)
	}
	defer r.stream.Stop()

	start := time.Now()
	deadline := start.Add(timeout)
	heardSomething := false

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if err := r.stream.Read(); err != nil && err != portaudio.InputOverflowed {
			return "", fmt.Errorf("reading from capture stream: %w", err)
		}

		if r.rec.AcceptWaveform(int16ToLE(r.frames)) != 0 {
			if text := resultText(r.rec.Result(), "text"); text != "" {
				return text, nil
			}
		} else if !heardSomething {
			heardSomething = resultText(r.rec.PartialResult(), "partial") != ""
		}

		if !heardSomething && time.Since(start) > r.initialSilence {
			return "", application.ErrNoSpeech
		}

		if time.Now().After(deadline) {
			if text := resultText(r.rec.FinalResult(), "text"); text != "" {
				return text, nil
			}
			return "", application.ErrNoSpeech
		}
	}
}

func (r *Recognizer) Close() error {
	var err error
	if r.stream != nil {
		err = r.stream.Close()
		r.stream = nil
	}
	if r.rec != nil {
		r.rec.Free()
		r.rec = nil
	}
	if r.model != nil {
		r.model.Free()
		r.model = nil
	}
	portaudio.Terminate()
	if err != nil {
		return fmt.Errorf("closing capture stream: %w", err)
	}
	return nil
}

// resultText pulls the named field from a vosk JSON result. Unparseable
// results read as silence.
func resultText(raw, field string) string {
	var parsed map[string]string
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return ""
	}
	return parsed[field]
}

func int16ToLE(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, sample := range samples {
		buf[i*2] = byte(sample)
		buf[i*2+1] = byte(sample >> 8)
	}
	return buf
}
