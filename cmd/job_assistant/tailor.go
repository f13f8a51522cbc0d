package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-application-assistant/internal/browser"
	"github.com/jonathan/job-application-assistant/internal/config"
	"github.com/jonathan/job-application-assistant/internal/observability"
	"github.com/jonathan/job-application-assistant/internal/pipeline"
	"github.com/jonathan/job-application-assistant/internal/rendering"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Assess the fit and write a tailored resume and cover letter",
	Long: `Runs the full pipeline end to end: ingest -> assess -> tailor -> render.

Writes Resume_<label>_<timestamp>.html and CoverLetter_<label>_<timestamp> (.html and .txt) to the
output directory. With --pdf the pages are also printed to PDF by headless Chrome and the resume is trimmed
to --max-pages.`,
	RunE: runTailor,
}

var (
	tailorInputs   jobFlags
	tailorLabel    string
	tailorTemplate string
	tailorOutDir   string
	tailorMaxPages int
	tailorPDF      bool
)

func init() {
	tailorInputs.register(tailorCmd)
	tailorCmd.Flags().StringVarP(&tailorLabel, "label", "l", "", "Label used in output file names (e.g. company and role)")
	tailorCmd.Flags().StringVarP(&tailorTemplate, "template", "t", "", "Path to HTML resume template")
	tailorCmd.Flags().StringVarP(&tailorOutDir, "out", "o", "", "Output directory")
	tailorCmd.Flags().IntVar(&tailorMaxPages, "max-pages", 0, "Maximum resume pages")
	tailorCmd.Flags().BoolVar(&tailorPDF, "pdf", false, "Also print PDFs with headless Chrome")

	rootCmd.AddCommand(tailorCmd)
}

func runTailor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// Only override if the flag was explicitly set
	cfg, err := loadConfig(func(cfg *config.Config) {
		if cmd.Flags().Changed("template") {
			cfg.Output.Template = tailorTemplate
		}
		if cmd.Flags().Changed("out") {
			cfg.Output.Dir = tailorOutDir
		}
		if cmd.Flags().Changed("max-pages") {
			cfg.MaxPages = tailorMaxPages
		}
	})
	if err != nil {
		return err
	}
	engine, logger, err := setup(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	jobText, resumeText, err := readInputs(ctx, &tailorInputs, cfg)
	if err != nil {
		return err
	}

	rc := pipeline.NewRunContext(cfg, tailorLabel, logger)
	res, err := engine.Run(ctx, rc, pipeline.RunOptions{ResumeText: resumeText, JobText: jobText})
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	var printer rendering.PDFPrinter
	if tailorPDF {
		printer = browser.NewPDFPrinter()
	}
	artifacts, err := engine.Render(ctx, rc, res, rendering.NewHTMLGateway(cfg.Output.Template, printer, logger), nil)
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}

	out := observability.NewPrinter(cmd.OutOrStdout())
	out.PrintRequirements(res.Job.RoleTitle, res.Job.Requirements)
	out.PrintAssessment(&res.Assessment)
	out.PrintPlan(&artifacts.Plan)
	out.PrintArtifacts(artifacts.Paths())
	return nil
}
