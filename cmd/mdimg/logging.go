package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"mdimg/internal/config"
)

const logLevelEnvKey = "MDIMG_LOG_LEVEL"

// levelCandidate is one place a log level can come from, in precedence order.
type levelCandidate struct {
	source string
	raw    string
}

func levelCandidates(flagLevel, envLevel, configLevel string) []levelCandidate {
	return []levelCandidate{
		{source: "--log-level", raw: flagLevel},
		{source: logLevelEnvKey, raw: envLevel},
		{source: "log_level", raw: configLevel},
	}
}

// resolveLogLevel returns the first non-empty candidate's level. A bad flag
// is an error; a bad env or config value falls back to the default level and
// produces a warning for stderr.
func resolveLogLevel(flagLevel, envLevel, configLevel string) (slog.Level, string, error) {
	for _, c := range levelCandidates(flagLevel, envLevel, configLevel) {
		if strings.TrimSpace(c.raw) == "" {
			continue
		}
		level, err := parseLogLevel(c.raw)
		if err == nil {
			return level, "", nil
		}
		if c.source == "--log-level" {
			return 0, "", fmt.Errorf("invalid --log-level %q", c.raw)
		}
		fallback, _ := parseLogLevel(config.DefaultLogLevel)
		return fallback, fmt.Sprintf("warning: invalid %s=%q; defaulting to %s", c.source, c.raw, config.DefaultLogLevel), nil
	}
	level, _ := parseLogLevel(config.DefaultLogLevel)
	return level, "", nil
}

func configureLoggerForCLI(flagLevel, configLevel string) (string, error) {
	level, warning, err := resolveLogLevel(flagLevel, os.Getenv(logLevelEnvKey), configLevel)
	if err != nil {
		return "", err
	}
	slog.SetDefault(newLogger(level))
	return warning, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "":
		return 0, fmt.Errorf("empty log level")
	case "warning":
		value = "warn"
	}

	if numeric, err := strconv.Atoi(value); err == nil {
		return slog.Level(numeric), nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

// newLogger writes to stderr so stdout stays reserved for reports.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
