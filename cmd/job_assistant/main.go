// Package main provides the job_assistant command line: fit assessment, tailoring and the web form.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "job_assistant",
	Short: "Job Application Assistant",
	Long: `Job Application Assistant scores a resume against a job description, recommends APPLY, MAYBE or NO,
and writes a tailored resume and cover letter as HTML and PDF.

Configuration is read from --config, then environment variables; command-line flags override both.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
