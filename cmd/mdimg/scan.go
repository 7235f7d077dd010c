package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"mdimg/internal/imagestore"
	"mdimg/internal/localize"
	"mdimg/internal/markdown"
)

type scanEntry struct {
	URL         string `json:"url" yaml:"url"`
	Occurrences int    `json:"occurrences" yaml:"occurrences"`
	FileName    string `json:"file_name" yaml:"file_name"`
	MediaType   string `json:"media_type" yaml:"media_type"`
}

type scanReport struct {
	DocumentPath string      `json:"document_path" yaml:"document_path"`
	Folder       string      `json:"folder,omitempty" yaml:"folder,omitempty"`
	References   int         `json:"references" yaml:"references"`
	Entries      []scanEntry `json:"entries" yaml:"entries"`
}

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <document>",
		Short: "List the remote image references of a document without fetching them",
		Args:  requireExactlyArgs(1, "document path is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := scanDocument(args[0])
			if err != nil {
				return err
			}
			if structuredOutput() {
				return writeStructured(cmd.OutOrStdout(), report)
			}
			for _, entry := range report.Entries {
				if err := writePlain(cmd.OutOrStdout(), "%s x%d %s %s\n", entry.URL, entry.Occurrences, entry.FileName, entry.MediaType); err != nil {
					return err
				}
			}
			return writePlain(cmd.OutOrStdout(), "%d references, %d distinct\n", report.References, len(report.Entries))
		},
	}
}

func scanDocument(path string) (scanReport, error) {
	content, _, err := localize.ReadDocument(path)
	if err != nil {
		return scanReport{}, err
	}
	text := string(content)

	folder, err := markdown.FolderFromFrontMatter(text)
	if err != nil {
		slog.Warn("ignoring front matter", "document", path, "err", err)
		folder = ""
	}

	refs := markdown.ImageURLs(text)
	counts := markdown.Count(refs)
	report := scanReport{
		DocumentPath: path,
		Folder:       folder,
		References:   len(refs),
		Entries:      []scanEntry{},
	}
	for _, url := range markdown.Distinct(refs) {
		report.Entries = append(report.Entries, scanEntry{
			URL:         url,
			Occurrences: counts[url],
			FileName:    imagestore.FileNameFromURL(url),
			MediaType:   localize.MediaTypeForURL(url),
		})
	}
	return report, nil
}
