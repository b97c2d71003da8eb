package say

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// Speaker vocalizes text through an external synthesis command, blocking
// until the command exits. The command can be overridden from config;
// otherwise a per-OS default applies.
type Speaker struct {
	command  string
	args     []string
	viaStdin bool
	logger   *slog.Logger
}

func NewSpeaker(command string, args []string, logger *slog.Logger) *Speaker {
	viaStdin := false
	if command == "" {
		switch runtime.GOOS {
		case "darwin":
			command = "say"
		case "windows":
			command = "powershell"
			args = []string{
				"-NoProfile",
				"-Command",
				"Add-Type -AssemblyName System.Speech; (New-Object System.Speech.Synthesis.SpeechSynthesizer).Speak([Console]::In.ReadToEnd())",
			}
			viaStdin = true
		default:
			command = "espeak"
		}
	}
	return &Speaker{
		command:  command,
		args:     args,
		viaStdin: viaStdin,
		logger:   logger,
	}
}

func (s *Speaker) Speak(ctx context.Context, text string) error {
	var cmd *exec.Cmd
	if s.viaStdin {
		cmd = exec.CommandContext(ctx, s.command, s.args...)
		cmd.Stdin = strings.NewReader(text)
	} else {
		cmd = exec.CommandContext(ctx, s.command, append(append([]string{}, s.args...), text)...)
	}

	s.logger.Debug("speaking", "command", s.command, "chars", len(text))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", s.command, err)
	}
	return nil
}

func (s *Speaker) Close() error {
	return nil
}
