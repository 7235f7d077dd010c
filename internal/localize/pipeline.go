// Package localize rewrites a Markdown document so its remote image
// references point at local files or inline data URIs.
//
// A run reads the document, writes a backup, then fetches each distinct
// reference in scan order and substitutes its replacement into the working
// text. The document is written back once, after the loop.
package localize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mdimg/internal/fetch"
	"mdimg/internal/markdown"
	"mdimg/internal/models"
)

// Fetcher retrieves the bytes behind one URL, retrying as it sees fit.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (fetch.Result, error)
}

// Recorder persists a finished run.
type Recorder interface {
	RecordRun(ctx context.Context, run *models.Run) error
}

// Options selects what one run does.
type Options struct {
	DocumentPath string
	Mode         models.Mode
	// Folder is the subfolder under the image root. When empty in file mode
	// the document's image_folder front matter key is used.
	Folder string
}

// Pipeline holds the collaborators shared by runs.
type Pipeline struct {
	Fetcher      Fetcher
	Recorder     Recorder
	Logger       *slog.Logger
	BaseDir      string
	ImageRoot    string
	BackupSuffix string
	// Progress, when set, is called once per distinct reference as soon as
	// its outcome is known.
	Progress func(models.Outcome)
	Now      func() time.Time
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now().UTC()
	}
	return p.Now()
}

// Run executes the pipeline for one document. Setup failures (unreadable
// document, missing folder, unwritable backup) are returned before the
// document is touched; per-reference failures are reported in the returned
// run's outcomes and never abort it.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*models.Run, error) {
	if p.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if strings.TrimSpace(opts.DocumentPath) == "" {
		return nil, fmt.Errorf("document path is required")
	}
	if !models.IsValidMode(opts.Mode) {
		return nil, fmt.Errorf("invalid mode: %q", opts.Mode)
	}

	log := p.logger().With("document", opts.DocumentPath, "mode", string(opts.Mode))
	run := &models.Run{
		DocumentPath: opts.DocumentPath,
		Mode:         opts.Mode,
		StartedAt:    p.now(),
	}

	content, perm, err := ReadDocument(opts.DocumentPath)
	if err != nil {
		return nil, err
	}
	text := string(content)

	if opts.Mode == models.ModeFile {
		folder, err := resolveFolder(opts.Folder, text)
		if err != nil {
			return nil, err
		}
		run.Folder = folder
	}

	dest, err := NewDestination(opts.Mode, DestinationOptions{
		BaseDir:   p.BaseDir,
		ImageRoot: p.ImageRoot,
		Folder:    run.Folder,
	})
	if err != nil {
		return nil, err
	}

	suffix := p.BackupSuffix
	if suffix == "" {
		suffix = "_backup"
	}
	backupPath, err := WriteBackup(opts.DocumentPath, suffix, content)
	if err != nil {
		return nil, err
	}
	run.BackupPath = backupPath
	log.Debug("backup written", "backup", backupPath)

	refs := markdown.ImageURLs(text)
	counts := markdown.Count(refs)
	distinct := markdown.Distinct(refs)
	run.References = len(refs)
	log.Info("references found", "total", len(refs), "distinct", len(distinct))

	for _, url := range distinct {
		var outcome models.Outcome
		text, outcome = p.localizeOne(ctx, log, dest, text, url)
		outcome.Occurrences = counts[url]
		run.Outcomes = append(run.Outcomes, outcome)
		if p.Progress != nil {
			p.Progress(outcome)
		}
	}

	if run.Succeeded() > 0 {
		if err := WriteDocument(opts.DocumentPath, []byte(text), perm); err != nil {
			return run, err
		}
		run.Rewritten = true
	}
	run.FinishedAt = p.now()

	log.Info("run finished", "succeeded", run.Succeeded(), "failed", run.Failed(), "rewritten", run.Rewritten)

	if p.Recorder != nil {
		if err := p.Recorder.RecordRun(ctx, run); err != nil {
			log.Warn("record run failed", "err", err)
		}
	}
	return run, nil
}

// localizeOne fetches url and, on success, returns text with every
// occurrence of url replaced. On failure text is returned unchanged.
func (p *Pipeline) localizeOne(ctx context.Context, log *slog.Logger, dest Destination, text, url string) (string, models.Outcome) {
	outcome := models.Outcome{URL: url, Status: models.OutcomeFailed}

	// An earlier replacement of a URL that prefixes this one already
	// rewrote every occurrence.
	if !strings.Contains(text, url) {
		log.Warn("reference already rewritten by an earlier replacement", "url", url)
		outcome.Error = ErrOverlappingReference.Error()
		return text, outcome
	}

	result, err := p.Fetcher.Fetch(ctx, url)
	outcome.Attempts = result.Attempts
	if err != nil {
		log.Error("fetch failed", "url", url, "attempts", result.Attempts, "err", err)
		outcome.Error = err.Error()
		return text, outcome
	}

	placement, err := dest.Place(ctx, url, result.Body)
	if err != nil {
		log.Error("place image failed", "url", url, "err", err)
		outcome.Error = err.Error()
		return text, outcome
	}

	outcome.FileName = placement.FileName
	outcome.MediaType = placement.MediaType
	outcome.SizeBytes = placement.SizeBytes
	outcome.Digest = placement.Digest
	switch dest.Mode() {
	case models.ModeInline:
		outcome.Status = models.OutcomeInlined
	default:
		outcome.Status = models.OutcomeSaved
		outcome.Replacement = placement.Replacement
	}
	log.Debug("reference localized", "url", url, "status", string(outcome.Status), "bytes", placement.SizeBytes)

	return Replace(text, url, placement.Replacement), outcome
}

func resolveFolder(flagFolder, text string) (string, error) {
	if folder := strings.TrimSpace(flagFolder); folder != "" {
		return folder, nil
	}
	folder, err := markdown.FolderFromFrontMatter(text)
	if err != nil {
		return "", fmt.Errorf("read front matter: %w", err)
	}
	if folder == "" {
		return "", ErrFolderRequired
	}
	return folder, nil
}
