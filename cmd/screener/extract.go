package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/links"
	"alfredoptarigan/resume-screener/internal/services"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Print the GitHub and LinkedIn identifiers found in resumes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

var extractPlatform string

func init() {
	extractCmd.Flags().StringVar(&extractPlatform, "platform", "", "github or linkedin (default both)")
	rootCmd.AddCommand(extractCmd)
}

type fileIdentifiers struct {
	File        string             `json:"file"`
	Identifiers []links.Identifier `json:"identifiers"`
	Error       string             `json:"error,omitempty"`
}

func platformsFor(name string) ([]links.Platform, error) {
	if name == "" {
		return []links.Platform{links.GitHub, links.LinkedIn}, nil
	}
	p, ok := links.ParsePlatform(name)
	if !ok {
		return nil, fmt.Errorf("unknown platform %q", name)
	}
	return []links.Platform{p}, nil
}

// extractFiles reads every file and reports its identifiers. Files that
// cannot be read are reported with an error instead of failing the batch.
func extractFiles(extractor services.TextExtractor, platforms []links.Platform, paths []string) []fileIdentifiers {
	out := make([]fileIdentifiers, 0, len(paths))
	for _, path := range paths {
		entry := fileIdentifiers{File: path, Identifiers: []links.Identifier{}}

		data, err := os.ReadFile(path)
		if err != nil {
			entry.Error = err.Error()
			out = append(out, entry)
			continue
		}

		name := filepath.Base(path)
		text, err := extractor.Extract(name, data)
		if err != nil {
			entry.Error = err.Error()
		}
		entry.Identifiers = links.Collect(platforms, text, extractor.Links(name, data))
		out = append(out, entry)
	}
	return out
}

func writeIdentifiers(w io.Writer, results []fileIdentifiers) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(results)
}

func runExtract(cmd *cobra.Command, args []string) error {
	platforms, err := platformsFor(extractPlatform)
	if err != nil {
		return err
	}

	_, zl, err := setup(cmd)
	if err != nil {
		return err
	}

	extractor := services.NewTextExtractor(services.NewPDFParserService(zl), zl)
	results := extractFiles(extractor, platforms, args)

	found := 0
	for _, r := range results {
		found += len(r.Identifiers)
	}
	zl.Debug("identifiers extracted", zap.Int("files", len(results)), zap.Int("identifiers", found))

	return writeIdentifiers(cmd.OutOrStdout(), results)
}
