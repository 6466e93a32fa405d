package cli

import (
	"encoding/json"
	"fmt"

	"resumetailor/internal/common"
	"resumetailor/internal/diff"
	"resumetailor/internal/types"

	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff [original-resume-file] [tailored-resume-file]",
	Short: "Audit the changes between an original and a tailored resume",
	Long: `Compare two structured resume files and report every change between
them, section by section. Modified lines carry word-level annotations so you
can see exactly what the tailoring rewrote. This command is purely local and
makes no AI calls.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if diffConfig.OutputFormat == "" {
			diffConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(diffConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runDiff,
}

var diffConfig common.CommandConfig

func init() {
	diffCmd.Flags().StringVarP(&diffConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	diffCmd.Flags().StringVar(&diffConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = diffCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runDiff(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	fileProcessor := common.NewFileProcessor(logger)
	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	resumes := make([]*types.ResumeJSON, len(contents))
	for i, content := range contents {
		raw := []byte(content)
		if err := types.ValidateResume(raw); err != nil {
			return fmt.Errorf("invalid resume file %s: %w", args[i], err)
		}
		var resume types.ResumeJSON
		if err := json.Unmarshal(raw, &resume); err != nil {
			return fmt.Errorf("failed to parse resume file %s: %w", args[i], err)
		}
		resumes[i] = &resume
	}

	logger.Info("Computing resume diff",
		"original", args[0], "tailored", args[1],
		"output_format", diffConfig.OutputFormat)

	report := diff.Compare(resumes[0], resumes[1])

	logger.Info("Resume diff completed", "total_changes", report.TotalChanges)
	return common.NewOutputHandler(logger).HandleOutput(report, diffConfig)
}
