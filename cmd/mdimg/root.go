package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mdimg/internal/config"
	"mdimg/internal/format"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		logLevel   string
		formatName string
	)

	cmd := &cobra.Command{
		Use:           "mdimg",
		Short:         "mdimg downloads the remote images of a Markdown document and relinks them locally",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), warning)
			}
			formatter, err := format.New(formatName)
			if err != nil {
				return err
			}
			outputFormatter = formatter
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&formatName, "format", format.NameText, "output format (text, json, yaml)")

	cmd.AddCommand(
		newLocalizeCmd(cfg),
		newScanCmd(),
		newHistoryCmd(cfg),
		newMigrateCmd(cfg),
		newConfigCmd(cfg),
	)

	return cmd
}
