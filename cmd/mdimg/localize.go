package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mdimg/internal/config"
	"mdimg/internal/fetch"
	"mdimg/internal/localize"
	"mdimg/internal/models"
	"mdimg/internal/store"
)

func newLocalizeCmd(cfg *config.Config) *cobra.Command {
	var (
		folder       string
		markdownPath string
		modeName     string
		inline       bool
	)

	cmd := &cobra.Command{
		Use:   "localize <document>",
		Short: "Download remote images and rewrite the document to use them",
		Long: "Fetch every remote image referenced as ![alt](http...) in the document.\n" +
			"File mode saves them under <image_root>/<folder>/; --inline embeds them as data URIs.\n" +
			"A backup of the original document is written before anything is changed.",
		Args: requireAtMostArgs(1, "expected a single document path"),
		RunE: func(cmd *cobra.Command, args []string) error {
			docPath, err := documentArg(args, markdownPath)
			if err != nil {
				return err
			}
			mode, err := selectMode(modeName, inline)
			if err != nil {
				return err
			}

			pipeline, cleanup, err := newPipeline(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			run, err := pipeline.Run(cmd.Context(), localize.Options{
				DocumentPath: docPath,
				Mode:         mode,
				Folder:       folder,
			})
			if err != nil {
				return err
			}
			if structuredOutput() {
				return writeStructured(cmd.OutOrStdout(), run)
			}
			return writeRunSummary(cmd.OutOrStdout(), run)
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", "subfolder under the image root (file mode)")
	cmd.Flags().StringVarP(&markdownPath, "markdown", "m", "", "document path, as an alternative to the argument")
	cmd.Flags().StringVar(&modeName, "mode", string(models.ModeFile), "destination mode (file, inline)")
	cmd.Flags().BoolVar(&inline, "inline", false, "shorthand for --mode inline")

	return cmd
}

// selectMode resolves --mode and its --inline shorthand.
func selectMode(modeName string, inline bool) (models.Mode, error) {
	mode, err := models.ParseMode(modeName)
	if err != nil {
		return "", err
	}
	if inline {
		return models.ModeInline, nil
	}
	return mode, nil
}

// newPipeline wires the fetcher, the optional history ledger and progress
// output for one localize invocation.
func newPipeline(cfg *config.Config, out io.Writer) (*localize.Pipeline, func(), error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, err
	}

	logger := slog.Default()
	pipeline := &localize.Pipeline{
		Fetcher: fetch.New(fetch.Config{
			Timeout:    cfg.Fetch.Timeout(),
			MaxRetries: cfg.Fetch.MaxRetries,
			RetryDelay: cfg.Fetch.RetryDelay(),
			MaxBytes:   cfg.Fetch.MaxBytes,
			UserAgent:  cfg.Fetch.UserAgent,
			Logger:     logger,
		}),
		Logger:       logger,
		BaseDir:      cwd,
		ImageRoot:    cfg.ImageRoot,
		BackupSuffix: cfg.BackupSuffix,
	}
	if !structuredOutput() {
		pipeline.Progress = func(outcome models.Outcome) {
			_ = writePlain(out, "%s\n", formatOutcomeLine(outcome))
		}
	}

	cleanup := func() {}
	if cfg.History {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			logger.Warn("history disabled: open ledger failed", "db", cfg.DBPath, "err", err)
		} else {
			pipeline.Recorder = st
			cleanup = func() { _ = st.Close() }
		}
	}

	return pipeline, cleanup, nil
}
