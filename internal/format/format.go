package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	NameText = "text"
	NameJSON = "json"
	NameYAML = "yaml"
)

// Formatter abstracts output formatting.
type Formatter interface {
	Write(w io.Writer, payload any) error
}

// JSONFormatter writes JSON output.
type JSONFormatter struct{}

// Write writes JSON payload to a writer.
func (f JSONFormatter) Write(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(payload)
}

// YAMLFormatter writes YAML output.
type YAMLFormatter struct{}

// Write writes YAML payload to a writer.
func (f YAMLFormatter) Write(w io.Writer, payload any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(payload); err != nil {
		return err
	}
	return enc.Close()
}

// New returns the structured formatter for name. Text output is rendered by
// the caller, so NameText yields a nil formatter.
func New(name string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameText:
		return nil, nil
	case NameJSON:
		return JSONFormatter{}, nil
	case NameYAML:
		return YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (allowed: %s, %s, %s)", name, NameText, NameJSON, NameYAML)
	}
}
