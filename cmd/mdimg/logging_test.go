package main

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		raw     string
		want    slog.Level
		wantErr bool
	}{
		{raw: "debug", want: slog.LevelDebug},
		{raw: "INFO", want: slog.LevelInfo},
		{raw: " warn ", want: slog.LevelWarn},
		{raw: "warning", want: slog.LevelWarn},
		{raw: "error", want: slog.LevelError},
		{raw: "-4", want: slog.LevelDebug},
		{raw: "", wantErr: true},
		{raw: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseLogLevel(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse level: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestResolveLogLevel(t *testing.T) {
	tests := []struct {
		name        string
		flag        string
		env         string
		config      string
		want        slog.Level
		wantWarning string
		wantErr     bool
	}{
		{name: "flag wins", flag: "debug", env: "error", config: "warn", want: slog.LevelDebug},
		{name: "flag wins over invalid env", flag: "debug", env: "bogus", want: slog.LevelDebug},
		{name: "env before config", env: "warn", config: "error", want: slog.LevelWarn},
		{name: "config", config: "error", want: slog.LevelError},
		{name: "default", want: slog.LevelInfo},
		{name: "invalid flag", flag: "verbose", wantErr: true},
		{name: "invalid env", env: "verbose", config: "error", want: slog.LevelInfo, wantWarning: "invalid MDIMG_LOG_LEVEL"},
		{name: "invalid config", config: "verbose", want: slog.LevelInfo, wantWarning: "invalid log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warning, err := resolveLogLevel(tt.flag, tt.env, tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if tt.wantWarning == "" && warning != "" {
				t.Fatalf("expected no warning, got %q", warning)
			}
			if tt.wantWarning != "" {
				if !strings.Contains(warning, tt.wantWarning) || !strings.Contains(warning, "defaulting to info") {
					t.Fatalf("expected warning containing %q, got %q", tt.wantWarning, warning)
				}
			}
		})
	}
}

func TestConfigureLoggerForCLIReadsEnv(t *testing.T) {
	t.Setenv(logLevelEnvKey, "nonsense")
	warning, err := configureLoggerForCLI("", "debug")
	if err != nil {
		t.Fatalf("configure logger: %v", err)
	}
	if !strings.Contains(warning, logLevelEnvKey) {
		t.Fatalf("expected env warning, got %q", warning)
	}
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected fallback to info level")
	}
}
