package cli

import (
	"context"
	"fmt"
	"strings"

	"resumetailor/internal/ai"
	"resumetailor/internal/common"
	"resumetailor/internal/types"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [resume-text-file]",
	Short: "Parse a freeform resume into structured JSON",
	Long: `Parse a freeform plain text resume into the structured resume format
using AI. Use this to bring an existing resume into the system so it can be
tailored and diffed. Sections the AI cannot find are left empty rather than
invented.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if parseConfig.OutputFormat == "" {
			parseConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(parseConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runParse,
}

var parseConfig common.CommandConfig

func init() {
	parseCmd.Flags().StringVarP(&parseConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	parseCmd.Flags().StringVar(&parseConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = parseCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Create AI service for parse operation
	parseAIConfig := cfg.GetParseConfig()
	aiService, err := ai.NewService(&parseAIConfig, "parse", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	createInput := func(contents []string) (string, error) {
		if len(contents) != 1 {
			return "", fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		if strings.TrimSpace(contents[0]) == "" {
			return "", fmt.Errorf("resume text file is empty")
		}
		return contents[0], nil
	}

	logDetails := func(resumeText string, cfg common.CommandConfig) {
		logger.Info("Starting freeform resume parsing",
			"resume_chars", len(resumeText),
			"output_format", cfg.OutputFormat)
	}

	// Create a wrapper function that uses our specific AI service
	parseOperation := func(ctx context.Context, resumeText string) (*types.ResumeJSON, *ai.TokenUsage, error) {
		return aiService.Provider.ParseFreeformResume(ctx, resumeText)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		parseConfig,
		args,
		createInput,
		parseOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to parse resume: %w", err)
	}
	logger.Info("Freeform resume parsing completed successfully")
	return nil
}
