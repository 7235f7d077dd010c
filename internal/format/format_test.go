package format

import (
	"bytes"
	"strings"
	"testing"
)

type payload struct {
	URL    string `json:"url" yaml:"url"`
	Status string `json:"status" yaml:"status"`
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSONFormatter{}).Write(&buf, payload{URL: "https://example.com/a.png", Status: "saved"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{"url":"https://example.com/a.png","status":"saved"}` + "\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (YAMLFormatter{}).Write(&buf, payload{URL: "https://example.com/a.png", Status: "saved"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "url: https://example.com/a.png\n") || !strings.Contains(out, "status: saved\n") {
		t.Fatalf("unexpected yaml: %q", out)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		want    Formatter
		wantErr bool
	}{
		{name: "", want: nil},
		{name: "text", want: nil},
		{name: "json", want: JSONFormatter{}},
		{name: "YAML", want: YAMLFormatter{}},
		{name: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %T, got %T", tt.want, got)
			}
		})
	}
}
