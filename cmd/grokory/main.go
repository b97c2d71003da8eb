package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/illsk1lls/Grokory/config"
	"github.com/illsk1lls/Grokory/internal/application"
	"github.com/illsk1lls/Grokory/internal/infra/eventlog"
	"github.com/illsk1lls/Grokory/internal/infra/hotkey"
	"github.com/illsk1lls/Grokory/internal/infra/say"
	"github.com/illsk1lls/Grokory/internal/infra/vosk"
	"github.com/illsk1lls/Grokory/internal/infra/xai"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Optional .env for XAI_API_KEY and friends.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	events, err := eventlog.Open(cfg.Log.EventFile)
	if err != nil {
		logger.Error("opening event log", "error", err)
		os.Exit(1)
	}
	defer events.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pollInterval := parseDuration(cfg.Hotkey.PollInterval, 100*time.Millisecond, "hotkey.poll_interval", logger)
	listenTimeout := parseDuration(cfg.Speech.ListenTimeout, 10*time.Second, "speech.listen_timeout", logger)
	initialSilence := parseDuration(cfg.Speech.InitialSilence, 5*time.Second, "speech.initial_silence", logger)

	recognizer, err := vosk.NewRecognizer(cfg.Speech.ModelPath, cfg.Speech.SampleRate, initialSilence, logger)
	if err != nil {
		if errors.Is(err, vosk.ErrNoInputDevice) {
			// Unrecoverable precondition, acknowledged exit, not a crash.
			fmt.Println("Grokory needs a microphone, and none was found.")
			fmt.Print("Press Enter to exit.")
			bufio.NewReader(os.Stdin).ReadString('\n')
			os.Exit(0)
		}
		logger.Error("starting recognizer", "error", err)
		os.Exit(1)
	}

	speaker := say.NewSpeaker(cfg.Voice.Command, cfg.Voice.Args, logger)

	monitor, err := hotkey.NewMonitor(cfg.Hotkey.TalkKey, cfg.Hotkey.QuitKey, logger)
	if err != nil {
		// Release what was already acquired before bailing out.
		recognizer.Close()
		logger.Error("starting hotkey monitor", "error", err)
		os.Exit(1)
	}
	defer monitor.Close()

	if cfg.XAI.APIKey == "" {
		fmt.Println("No XAI_API_KEY configured: replies will be canned (demo mode).")
	}
	assistant := xai.NewClientWithURL(cfg.XAI.APIKey, cfg.XAI.Model, cfg.XAI.BaseURL)

	// The session owns the recognizer and speaker from here on and closes
	// both exactly once on the way out.
	session := application.NewSession(monitor, recognizer, assistant, speaker, events, logger, application.SessionOptions{
		PollInterval:  pollInterval,
		ListenTimeout: listenTimeout,
	})

	fmt.Printf("Grokory ready. Hold %s to talk, press %s to quit.\n", cfg.Hotkey.TalkKey, cfg.Hotkey.QuitKey)

	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("session error", "error", err)
		os.Exit(1)
	}

	fmt.Println("Goodbye.")
}

func parseDuration(value string, fallback time.Duration, name string, logger *slog.Logger) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logger.Warn("invalid duration, using default", "setting", name, "value", value, "default", fallback)
		return fallback
	}
	return d
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
