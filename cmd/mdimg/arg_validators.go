package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

func requireExactlyArgs(count int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != count {
			return errors.New(message)
		}
		return nil
	}
}

func requireAtMostArgs(max int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) > max {
			return errors.New(message)
		}
		return nil
	}
}

// documentArg picks the document from the positional argument or the
// --markdown flag; exactly one of them must be set.
func documentArg(args []string, flagValue string) (string, error) {
	flagValue = strings.TrimSpace(flagValue)
	switch {
	case len(args) == 1 && flagValue != "":
		return "", errors.New("document given twice; pass it as an argument or with --markdown, not both")
	case len(args) == 1:
		return args[0], nil
	case flagValue != "":
		return flagValue, nil
	default:
		return "", errors.New("document path is required")
	}
}
