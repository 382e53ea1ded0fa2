package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Screen a directory or zip of resumes against finalized criteria",
	RunE:  runAnalyze,
}

var (
	anCriteriaFile   string
	anJDFile         string
	anHRFile         string
	anResumes        string
	anGitHubRequired bool
	anXLSX           string
)

func init() {
	analyzeCmd.Flags().StringVar(&anCriteriaFile, "criteria", "", "finalized criteria JSON file")
	analyzeCmd.Flags().StringVar(&anJDFile, "jd", "", "job description text file")
	analyzeCmd.Flags().StringVar(&anHRFile, "hr", "", "HR notes text file")
	analyzeCmd.Flags().StringVar(&anResumes, "resumes", "", "directory or .zip of resumes")
	analyzeCmd.Flags().BoolVar(&anGitHubRequired, "github-required", false, "reject resumes without a GitHub profile (default from config)")
	analyzeCmd.Flags().StringVar(&anXLSX, "xlsx", "", "also write an xlsx report to this path")
	_ = analyzeCmd.MarkFlagRequired("criteria")
	_ = analyzeCmd.MarkFlagRequired("resumes")

	rootCmd.AddCommand(analyzeCmd)
}

// loadResumes reads the supported resumes from a zip archive or the top level
// of a directory, in name order for directories.
func loadResumes(path string, maxFileSize int64) ([]services.ResumeFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open resumes: %w", err)
	}

	if !info.IsDir() {
		if !strings.EqualFold(filepath.Ext(path), ".zip") {
			return nil, fmt.Errorf("%s is neither a directory nor a .zip archive", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read archive: %w", err)
		}
		return services.ExtractResumesFromZip(data, maxFileSize)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []services.ResumeFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !services.SupportedResumeExt[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, err
		}
		if maxFileSize > 0 && fi.Size() > maxFileSize {
			continue
		}
		data, err := os.ReadFile(filepath.Join(path, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		out = append(out, services.ResumeFile{
			ID:       fmt.Sprintf("r%d", len(out)+1),
			FileName: name,
			Data:     data,
		})
	}
	if len(out) == 0 {
		return nil, services.ErrNoResumes
	}
	return out, nil
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	doc, err := readCriteriaDoc(anCriteriaFile)
	if err != nil {
		return err
	}
	jd, err := readOptional(anJDFile)
	if err != nil {
		return err
	}
	hr, err := readOptional(anHRFile)
	if err != nil {
		return err
	}

	stack, err := newStack(ctx, cmd)
	if err != nil {
		return err
	}
	defer stack.Close()
	zl := stack.Logger

	resumes, err := loadResumes(anResumes, stack.Config.Storage.MaxFileSize)
	if err != nil {
		return err
	}

	githubRequired := stack.Config.Screening.GitHubRequired
	if cmd.Flags().Changed("github-required") {
		githubRequired = anGitHubRequired
	}

	zl.Info("screening resumes",
		zap.Int("resumes", len(resumes)),
		zap.Int("criteria", len(doc.Criteria)),
		zap.Bool("github_required", githubRequired),
	)

	report, err := stack.Screening.Analyze(ctx, services.AnalyzeInput{
		RunID:          uuid.New(),
		Criteria:       doc.Criteria,
		JobDescription: jd,
		HRNotes:        hr,
		GitHubRequired: githubRequired,
		Resumes:        resumes,
	})
	if err != nil {
		return err
	}

	name, err := stack.Artifacts.SaveResults(report)
	if err != nil {
		return err
	}

	if anXLSX != "" {
		if err := writeXLSX(anXLSX, report); err != nil {
			return err
		}
		zl.Info("xlsx report written", zap.String("file", anXLSX))
	}

	counts := report.GroupCounts()
	fields := []zap.Field{zap.Int("total", report.TotalProcessed), zap.String("file", name)}
	for _, group := range sortedKeys(counts) {
		fields = append(fields, zap.Int(group, counts[group]))
	}
	zl.Info("screening finished", fields...)

	for i, c := range report.Ranked {
		fmt.Fprintf(cmd.OutOrStdout(), "%2d. %-30s %-18s yes %d/%d  weighted %.2f\n",
			i+1, c.FileName, c.Group.Label(), c.YesCount, c.TotalCriteria, c.WeightedScore)
	}
	fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(stack.Artifacts.Dir(), name))
	return nil
}

func writeXLSX(path string, report *models.ScreeningReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create xlsx file: %w", err)
	}

	if err := services.NewExportService().WriteXLSX(report, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
