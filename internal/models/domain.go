package models

import (
	"fmt"
	"strings"
)

// Mode selects where fetched images end up.
type Mode string

const (
	// ModeFile saves images under the image root and links them by relative path.
	ModeFile Mode = "file"
	// ModeInline embeds images as base64 data URIs.
	ModeInline Mode = "inline"
)

// OutcomeStatus records what happened to one distinct reference.
type OutcomeStatus string

const (
	OutcomeSaved   OutcomeStatus = "saved"
	OutcomeInlined OutcomeStatus = "inlined"
	OutcomeFailed  OutcomeStatus = "failed"
)

var validModes = map[Mode]struct{}{
	ModeFile:   {},
	ModeInline: {},
}

var validOutcomeStatuses = map[OutcomeStatus]struct{}{
	OutcomeSaved:   {},
	OutcomeInlined: {},
	OutcomeFailed:  {},
}

func IsValidMode(mode Mode) bool {
	_, ok := validModes[mode]
	return ok
}

func IsValidOutcomeStatus(status OutcomeStatus) bool {
	_, ok := validOutcomeStatuses[status]
	return ok
}

func ParseMode(raw string) (Mode, error) {
	value := Mode(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("mode is required")
	}
	if !IsValidMode(value) {
		return "", fmt.Errorf("invalid mode: %s", value)
	}
	return value, nil
}

// Succeeded reports whether the status represents a rewritten reference.
func (s OutcomeStatus) Succeeded() bool {
	return s == OutcomeSaved || s == OutcomeInlined
}
