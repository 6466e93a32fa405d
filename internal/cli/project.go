package cli

import (
	"encoding/json"
	"fmt"

	"resumetailor/internal/common"
	"resumetailor/internal/profile"
	"resumetailor/internal/types"

	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project [profile-file]",
	Short: "Project a user profile into the structured resume format",
	Long: `Convert a user profile JSON file into the structured resume format.
The projection is deterministic and makes no AI calls: every experience,
project, and skill group in the profile is carried over as-is. Use the text
format to render the result as a plain text resume.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if projectConfig.OutputFormat == "" {
			projectConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(projectConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runProject,
}

var projectConfig common.CommandConfig

func init() {
	projectCmd.Flags().StringVarP(&projectConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	projectCmd.Flags().StringVar(&projectConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = projectCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runProject(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	fileProcessor := common.NewFileProcessor(logger)
	contents, err := fileProcessor.ValidateAndReadFiles(args[0])
	if err != nil {
		return err
	}

	var p types.UserProfile
	if err := json.Unmarshal([]byte(contents[0]), &p); err != nil {
		return fmt.Errorf("failed to parse profile file: %w", err)
	}

	resume := profile.ToResume(&p)

	logger.Info("Profile projected to resume",
		"experience_count", len(resume.Experience),
		"education_count", len(resume.Education),
		"output_format", projectConfig.OutputFormat)

	return common.NewOutputHandler(logger).HandleOutput(resume, projectConfig)
}
