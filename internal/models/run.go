package models

import "time"

// Outcome describes the result of localizing one distinct reference URL.
type Outcome struct {
	URL         string        `json:"url" yaml:"url"`
	Status      OutcomeStatus `json:"status" yaml:"status"`
	Occurrences int           `json:"occurrences" yaml:"occurrences"`
	Replacement string        `json:"replacement,omitempty" yaml:"replacement,omitempty"`
	FileName    string        `json:"file_name,omitempty" yaml:"file_name,omitempty"`
	MediaType   string        `json:"media_type,omitempty" yaml:"media_type,omitempty"`
	Attempts    int           `json:"attempts" yaml:"attempts"`
	SizeBytes   int64         `json:"size_bytes,omitempty" yaml:"size_bytes,omitempty"`
	Digest      string        `json:"digest,omitempty" yaml:"digest,omitempty"`
	Error       string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run is one pass of the localize pipeline over a document.
type Run struct {
	ID           string    `json:"id" yaml:"id"`
	DocumentPath string    `json:"document_path" yaml:"document_path"`
	BackupPath   string    `json:"backup_path" yaml:"backup_path"`
	Mode         Mode      `json:"mode" yaml:"mode"`
	Folder       string    `json:"folder,omitempty" yaml:"folder,omitempty"`
	References   int       `json:"references" yaml:"references"`
	Rewritten    bool      `json:"rewritten" yaml:"rewritten"`
	StartedAt    time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt   time.Time `json:"finished_at" yaml:"finished_at"`
	Outcomes     []Outcome `json:"outcomes" yaml:"outcomes"`
}

// Succeeded counts outcomes whose reference was rewritten.
func (r Run) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status.Succeeded() {
			n++
		}
	}
	return n
}

// Failed counts outcomes left untouched after a terminal fetch failure.
func (r Run) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// FetchRecord is one ledger row joining an outcome to its run.
type FetchRecord struct {
	RunID        string        `json:"run_id" yaml:"run_id"`
	DocumentPath string        `json:"document_path" yaml:"document_path"`
	URL          string        `json:"url" yaml:"url"`
	Status       OutcomeStatus `json:"status" yaml:"status"`
	Destination  string        `json:"destination,omitempty" yaml:"destination,omitempty"`
	Attempts     int           `json:"attempts" yaml:"attempts"`
	SizeBytes    int64         `json:"size_bytes" yaml:"size_bytes"`
	Digest       string        `json:"digest,omitempty" yaml:"digest,omitempty"`
	Error        string        `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt    time.Time     `json:"created_at" yaml:"created_at"`
}
