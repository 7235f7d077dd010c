package main

import (
	"fmt"
	"io"
	"time"

	"mdimg/internal/format"
	"mdimg/internal/models"
)

// outputFormatter is nil for text output.
var outputFormatter format.Formatter

func structuredOutput() bool {
	return outputFormatter != nil
}

func writeStructured(w io.Writer, payload any) error {
	return outputFormatter.Write(w, payload)
}

func writePlain(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func formatOutcomeLine(outcome models.Outcome) string {
	switch outcome.Status {
	case models.OutcomeSaved:
		return fmt.Sprintf("Downloaded: %s -> %s", outcome.URL, outcome.Replacement)
	case models.OutcomeInlined:
		return fmt.Sprintf("Inlined: %s (%s, %d bytes)", outcome.URL, outcome.MediaType, outcome.SizeBytes)
	default:
		if outcome.Error != "" {
			return fmt.Sprintf("Failed to download: %s (%s)", outcome.URL, outcome.Error)
		}
		return fmt.Sprintf("Failed to download: %s", outcome.URL)
	}
}

func writeRunSummary(w io.Writer, run *models.Run) error {
	if err := writePlain(w, "Backup: %s\n", run.BackupPath); err != nil {
		return err
	}
	if len(run.Outcomes) == 0 {
		return writePlain(w, "No remote image references found.\n")
	}
	if !run.Rewritten {
		return writePlain(w, "Document unchanged: %d of %d references failed.\n", run.Failed(), len(run.Outcomes))
	}
	return writePlain(w, "Updated %s: %d localized, %d failed.\n", run.DocumentPath, run.Succeeded(), run.Failed())
}

func writeRunDetail(w io.Writer, run *models.Run) error {
	lines := []string{
		fmt.Sprintf("id: %s", run.ID),
		fmt.Sprintf("document: %s", run.DocumentPath),
		fmt.Sprintf("backup: %s", run.BackupPath),
		fmt.Sprintf("mode: %s", run.Mode),
	}
	if run.Folder != "" {
		lines = append(lines, fmt.Sprintf("folder: %s", run.Folder))
	}
	lines = append(lines,
		fmt.Sprintf("references: %d", run.References),
		fmt.Sprintf("rewritten: %t", run.Rewritten),
		fmt.Sprintf("started_at: %s", formatTime(run.StartedAt)),
		fmt.Sprintf("finished_at: %s", formatTime(run.FinishedAt)),
	)
	for _, line := range lines {
		if err := writePlain(w, "%s\n", line); err != nil {
			return err
		}
	}
	if len(run.Outcomes) == 0 {
		return nil
	}
	if err := writePlain(w, "outcomes:\n"); err != nil {
		return err
	}
	for _, outcome := range run.Outcomes {
		if err := writePlain(w, "  - %s\n", formatOutcomeLine(outcome)); err != nil {
			return err
		}
	}
	return nil
}

func formatFetchRecordLine(record models.FetchRecord) string {
	line := fmt.Sprintf("%s %s [%s] %s", formatTime(record.CreatedAt), record.RunID, record.Status, record.URL)
	if record.Destination != "" {
		line += " -> " + record.Destination
	}
	if record.Status == models.OutcomeFailed && record.Error != "" {
		line += " (" + record.Error + ")"
	}
	return line
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
