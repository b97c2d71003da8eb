package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/illsk1lls/Grokory/internal/domain"
)

type State string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateProcessing State = "processing"
	StateSpeaking   State = "speaking"
	StateTerminated State = "terminated"
)

// Sentences spoken when a cycle fails. Always audible, never a silent hang.
const (
	quotaPhrase   = "I am out of API credits right now. Please check the account billing."
	offlinePhrase = "I cannot reach the assistant service. Please check your network connection."
	failedPhrase  = "Something went wrong talking to the assistant."
	faultPhrase   = "Sorry, something went wrong. Let's try that again."
)

type SessionOptions struct {
	// PollInterval bounds CPU usage while idle; the hotkey is sampled once
	// per interval. Defaults to 100ms.
	PollInterval time.Duration

	// ListenTimeout bounds a single Listen call. Defaults to 10s.
	ListenTimeout time.Duration

	// Output receives the console transcript. Defaults to os.Stdout.
	Output io.Writer
}

// Session is the push-to-talk loop: it samples the hotkey, and for each press
// drives one listen-ask-speak cycle. Cycles are strictly sequential; at most
// one utterance is in flight at any time. A fault inside a cycle degrades to
// a spoken apology and the loop keeps running.
type Session struct {
	hotkey    HotkeyMonitor
	stt       Transcriber
	assistant Assistant
	speaker   Speaker
	events    EventLog
	logger    *slog.Logger

	pollInterval  time.Duration
	listenTimeout time.Duration
	out           io.Writer

	state       State
	talkWasDown bool
	closed      bool
}

func NewSession(
	hotkey HotkeyMonitor,
	stt Transcriber,
	assistant Assistant,
	speaker Speaker,
	events EventLog,
	logger *slog.Logger,
	opts SessionOptions,
) *Session {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	if opts.ListenTimeout <= 0 {
		opts.ListenTimeout = 10 * time.Second
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Session{
		hotkey:        hotkey,
		stt:           stt,
		assistant:     assistant,
		speaker:       speaker,
		events:        events,
		logger:        logger,
		pollInterval:  opts.PollInterval,
		listenTimeout: opts.ListenTimeout,
		out:           opts.Output,
		state:         StateIdle,
	}
}

// Run polls until the quit key is observed or ctx is cancelled. Engine
// handles are released exactly once on the way out, whichever exit path is
// taken.
func (s *Session) Run(ctx context.Context) error {
	defer s.shutdown()

	s.setState(StateIdle)
	s.events.Event("session started")
	s.logger.Info("session ready", "poll", s.pollInterval, "listenTimeout", s.listenTimeout)

	for {
		select {
		case <-ctx.Done():
			s.setState(StateTerminated)
			return ctx.Err()
		default:
		}

		if s.hotkey.QuitRequested() {
			s.setState(StateTerminated)
			s.events.Event("quit requested")
			s.logger.Info("quit key observed, terminating")
			return nil
		}

		down := s.hotkey.TalkKeyDown()
		if down && !s.talkWasDown {
			s.runCycle(ctx)
			continue
		}
		s.talkWasDown = down

		select {
		case <-ctx.Done():
			s.setState(StateTerminated)
			return ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}

// runCycle drives one press through Listening, Processing and Speaking. The
// deferred block enforces the never-crash policy and the release-wait: the
// loop does not return to Idle until the talk key is let go and buffered
// input is drained, so a held press cannot re-trigger.
func (s *Session) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("unhandled fault in cycle", "panic", r)
			s.events.Event("unhandled fault: %v", r)
			s.speak(ctx, faultPhrase)
		}
		s.waitForRelease(ctx)
		s.hotkey.Drain()
		s.talkWasDown = false
		s.setState(StateIdle)
	}()

	s.setState(StateListening)
	s.events.Event("listening")
	text, err := s.stt.Listen(ctx, s.listenTimeout)
	if err != nil {
		if errors.Is(err, ErrNoSpeech) {
			s.logger.Info("no speech detected")
			s.events.Event("no speech detected")
			return
		}
		s.logger.Error("listening", "error", err)
		s.events.Event("listen failed: %v", err)
		s.speak(ctx, faultPhrase)
		return
	}

	fmt.Fprintf(s.out, "You: %s\n", text)
	s.events.Event("you: %s", text)

	s.setState(StateProcessing)
	reply := s.replyFor(ctx, text)
	fmt.Fprintf(s.out, "Grok: %s\n", reply)
	s.events.Event("grok: %s", reply)

	s.setState(StateSpeaking)
	s.speak(ctx, reply)
}

// replyFor always produces something to speak: the assistant's answer on
// success, otherwise the sentence matching the failure kind.
func (s *Session) replyFor(ctx context.Context, utterance string) string {
	reply, err := s.assistant.Ask(ctx, utterance)
	if err == nil {
		return reply
	}

	s.logger.Error("asking assistant", "error", err)
	s.events.Event("assistant request failed: %v", err)

	var aerr *domain.AssistantError
	if errors.As(err, &aerr) {
		switch aerr.Kind {
		case domain.FailureQuotaExceeded:
			return quotaPhrase
		case domain.FailureNetworkUnreachable:
			return offlinePhrase
		}
	}
	return failedPhrase
}

func (s *Session) speak(ctx context.Context, text string) {
	if err := s.speaker.Speak(ctx, text); err != nil {
		s.logger.Error("speaking", "error", err)
		s.events.Event("speak failed: %v", err)
	}
}

func (s *Session) waitForRelease(ctx context.Context) {
	for s.hotkey.TalkKeyDown() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.pollInterval):
		}
	}
}

func (s *Session) shutdown() {
	if s.closed {
		return
	}
	s.closed = true

	if err := s.stt.Close(); err != nil {
		s.logger.Error("closing transcriber", "error", err)
	}
	if err := s.speaker.Close(); err != nil {
		s.logger.Error("closing speaker", "error", err)
	}
	s.events.Event("session ended")
}

func (s *Session) setState(state State) {
	s.state = state
	s.logger.Debug("state change", "state", state)
}
