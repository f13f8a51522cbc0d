package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-application-assistant/internal/observability"
	"github.com/jonathan/job-application-assistant/internal/pipeline"
	"github.com/jonathan/job-application-assistant/internal/types"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Score a resume against a job description",
	Long:  "Extract the job's requirements, match them against the resume and print the fit score, recommendation and gaps.",
	RunE:  runAssess,
}

var (
	assessInputs jobFlags
	assessJSON   bool
)

func init() {
	assessInputs.register(assessCmd)
	assessCmd.Flags().BoolVar(&assessJSON, "json", false, "Print the assessment as JSON")

	rootCmd.AddCommand(assessCmd)
}

type assessOutput struct {
	RunID        string               `json:"run_id"`
	RoleTitle    string               `json:"role_title"`
	Requirements types.RequirementSet `json:"requirements"`
	Assessment   types.FitAssessment  `json:"assessment"`
}

func runAssess(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	engine, logger, err := setup(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	jobText, resumeText, err := readInputs(ctx, &assessInputs, cfg)
	if err != nil {
		return err
	}

	rc := pipeline.NewRunContext(cfg, "", logger)
	analysis, err := engine.Assess(ctx, rc, pipeline.RunOptions{ResumeText: resumeText, JobText: jobText})
	if err != nil {
		return fmt.Errorf("assessment failed: %w", err)
	}

	if assessJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(assessOutput{
			RunID:        rc.ID.String(),
			RoleTitle:    analysis.Job.RoleTitle,
			Requirements: analysis.Job.Requirements,
			Assessment:   analysis.Assessment,
		})
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintRequirements(analysis.Job.RoleTitle, analysis.Job.Requirements)
	printer.PrintAssessment(&analysis.Assessment)
	return nil
}
