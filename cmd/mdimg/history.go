package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mdimg/internal/config"
	"mdimg/internal/models"
	"mdimg/internal/store"
)

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	var (
		limit  int
		status string
		url    string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded image fetches",
		Args:  requireExactlyArgs(0, "history takes no arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !models.IsValidOutcomeStatus(models.OutcomeStatus(status)) {
				return fmt.Errorf("invalid status %q (allowed: saved, inlined, failed)", status)
			}
			return withStore(cfg, func(st *store.Store) error {
				records, err := st.ListFetches(cmd.Context(), store.HistoryFilter{
					Limit:  limit,
					Status: models.OutcomeStatus(status),
					URL:    url,
				})
				if err != nil {
					return err
				}
				if structuredOutput() {
					return writeStructured(cmd.OutOrStdout(), records)
				}
				for _, record := range records {
					if err := writePlain(cmd.OutOrStdout(), "%s\n", formatFetchRecordLine(record)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of fetches to list")
	cmd.Flags().StringVar(&status, "status", "", "only fetches with this status")
	cmd.Flags().StringVar(&url, "url", "", "only fetches of this exact URL")

	cmd.AddCommand(newHistoryShowCmd(cfg))
	return cmd
}

func newHistoryShowCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run",
		Args:  requireExactlyArgs(1, "run id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				run, err := st.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run not found: %s", args[0])
				}
				if structuredOutput() {
					return writeStructured(cmd.OutOrStdout(), run)
				}
				return writeRunDetail(cmd.OutOrStdout(), run)
			})
		},
	}
}

func withStore(cfg *config.Config, fn func(st *store.Store) error) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open history %s: %w", cfg.DBPath, err)
	}
	defer st.Close()
	return fn(st)
}
