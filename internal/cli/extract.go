package cli

import (
	"context"
	"fmt"

	"resumetailor/internal/ai"
	"resumetailor/internal/common"
	"resumetailor/internal/jobfetch"
	"resumetailor/internal/types"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [job-description-file]",
	Short: "Extract structured requirements from a job description",
	Long: `Extract structured requirements from a job posting using AI.
The job description comes from a plain text file or from --job-url, which
fetches the posting and strips the page down to its visible text.

The output includes the role title and category, must-have and preferred
qualifications, responsibilities, and ATS keywords.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if extractConfig.OutputFormat == "" {
			extractConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if err := common.ValidateOutputFormat(extractConfig.OutputFormat, cfg.App.SupportedFormats); err != nil {
			return err
		}
		if len(args) == 1 && extractJobURL != "" {
			return fmt.Errorf("provide either a job description file or --job-url, not both")
		}
		if len(args) == 0 && extractJobURL == "" {
			return fmt.Errorf("a job description file or --job-url is required")
		}
		return nil
	},
	RunE: runExtract,
}

var (
	extractConfig common.CommandConfig
	extractJobURL string
)

func init() {
	extractCmd.Flags().StringVarP(&extractConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().StringVar(&extractConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	extractCmd.Flags().StringVar(&extractJobURL, "job-url", "", "Fetch the job description from a URL instead of a file")

	// Add completion for format flag
	_ = extractCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	// Create AI service for extract operation
	extractAIConfig := cfg.GetExtractConfig()
	aiService, err := ai.NewService(&extractAIConfig, "extract", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	extractOperation := func(ctx context.Context, jobText string) (*types.JobRequirements, *ai.TokenUsage, error) {
		return aiService.Provider.ExtractRequirements(ctx, jobText)
	}

	if extractJobURL != "" {
		fetcher := jobfetch.New(cfg.JobFetch, logger)
		jobText, err := fetcher.Fetch(ctx, extractJobURL)
		if err != nil {
			return err
		}
		if err := common.ValidateJobText(jobText, cfg.App.MinJobTextLength); err != nil {
			return err
		}

		logger.Info("Starting requirement extraction",
			"job_chars", len(jobText),
			"job_url", extractJobURL,
			"output_format", extractConfig.OutputFormat)

		requirements, tokenUsage, err := extractOperation(ctx, jobText)
		if err != nil {
			return fmt.Errorf("failed to extract job requirements: %w", err)
		}
		if tokenUsage != nil {
			logger.Info("AI token usage",
				"input_tokens", tokenUsage.InputTokens,
				"output_tokens", tokenUsage.OutputTokens,
				"total_tokens", tokenUsage.TotalTokens)
		}
		logger.Info("Requirement extraction completed successfully")
		return common.NewOutputHandler(logger).HandleOutput(requirements, extractConfig)
	}

	createInput := func(contents []string) (string, error) {
		if len(contents) != 1 {
			return "", fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		if err := common.ValidateJobText(contents[0], cfg.App.MinJobTextLength); err != nil {
			return "", err
		}
		return contents[0], nil
	}

	logDetails := func(jobText string, cfg common.CommandConfig) {
		logger.Info("Starting requirement extraction",
			"job_chars", len(jobText),
			"output_format", cfg.OutputFormat)
	}

	err = common.RunAICommand(
		ctx,
		logger,
		extractConfig,
		args,
		createInput,
		extractOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to extract job requirements: %w", err)
	}
	logger.Info("Requirement extraction completed successfully")
	return nil
}
