package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

var criteriaCmd = &cobra.Command{
	Use:   "criteria",
	Short: "Generate and finalize screening criteria",
}

var criteriaGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft yes/no screening criteria from a job description",
	RunE:  runCriteriaGenerate,
}

var criteriaFinalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Select, reweight and extend a criteria draft",
	RunE:  runCriteriaFinalize,
}

var (
	genJDFile     string
	genHRFile     string
	genCount      int
	genSeniority  string
	finInFile     string
	finSelect     []string
	finInteractive bool
)

func init() {
	criteriaGenerateCmd.Flags().StringVar(&genJDFile, "jd", "", "job description text file")
	criteriaGenerateCmd.Flags().StringVar(&genHRFile, "hr", "", "HR notes text file")
	criteriaGenerateCmd.Flags().IntVar(&genCount, "count", 0, "number of criteria (5-10, default from config)")
	criteriaGenerateCmd.Flags().StringVar(&genSeniority, "seniority", "", "intern|junior|mid|senior|lead|principal (default from config)")
	_ = criteriaGenerateCmd.MarkFlagRequired("jd")

	criteriaFinalizeCmd.Flags().StringVar(&finInFile, "in", "", "criteria draft JSON file")
	criteriaFinalizeCmd.Flags().StringSliceVar(&finSelect, "select", nil, "criterion ids to keep (default all)")
	criteriaFinalizeCmd.Flags().BoolVarP(&finInteractive, "interactive", "i", false, "pick criteria and add custom questions interactively")
	_ = criteriaFinalizeCmd.MarkFlagRequired("in")

	criteriaCmd.AddCommand(criteriaGenerateCmd, criteriaFinalizeCmd)
	rootCmd.AddCommand(criteriaCmd)
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func readCriteriaDoc(path string) (models.QuestionsDoc, error) {
	var doc models.QuestionsDoc
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("failed to read criteria file: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse criteria file: %w", err)
	}
	if len(doc.Criteria) == 0 {
		return doc, fmt.Errorf("criteria file %s has no criteria", path)
	}
	return doc, nil
}

func runCriteriaGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	jd, err := readOptional(genJDFile)
	if err != nil {
		return err
	}
	hr, err := readOptional(genHRFile)
	if err != nil {
		return err
	}

	stack, err := newStack(ctx, cmd)
	if err != nil {
		return err
	}
	defer stack.Close()

	in := services.GenerateCriteriaInput{
		JobDescription: jd,
		HRNotes:        hr,
		Count:          genCount,
		Seniority:      models.Seniority(genSeniority),
	}
	if in.Count == 0 {
		in.Count = stack.Config.Screening.CriteriaCount
	}
	if in.Seniority == "" {
		in.Seniority = stack.Seniority()
	}

	stack.Logger.Info("generating criteria", zap.Int("count", in.Count), zap.String("seniority", string(in.Seniority)))

	doc, err := services.GenerateDoc(ctx, stack.Gemini, stack.Prompts, in)
	if err != nil {
		return err
	}

	name, err := stack.Artifacts.Save(services.ArtifactCriteriaDraft, doc)
	if err != nil {
		return err
	}

	stack.Logger.Info("criteria drafted", zap.Int("criteria", len(doc.Criteria)), zap.String("file", name))
	fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(stack.Artifacts.Dir(), name))
	return nil
}

func runCriteriaFinalize(cmd *cobra.Command, _ []string) error {
	cfg, zl, err := setup(cmd)
	if err != nil {
		return err
	}

	doc, err := readCriteriaDoc(finInFile)
	if err != nil {
		return err
	}

	in := services.FinalizeInput{Selected: trimAll(finSelect)}
	if finInteractive {
		in, err = pickCriteria(promptUI{}, doc, in.Selected)
		if err != nil {
			return err
		}
	}

	final, err := services.FinalizeDoc(doc, in)
	if err != nil {
		return err
	}

	store := services.NewArtifactStore(cfg.Storage.DataDir)
	name, err := store.SaveCriteria(final)
	if err != nil {
		return err
	}

	zl.Info("criteria finalized", zap.Strings("ids", final.IDs()), zap.String("file", name))
	fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(store.Dir(), name))
	return nil
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
