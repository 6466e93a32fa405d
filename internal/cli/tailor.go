package cli

import (
	"encoding/json"
	"fmt"

	"resumetailor/internal/ai"
	"resumetailor/internal/common"
	"resumetailor/internal/jobfetch"
	"resumetailor/internal/profile"
	"resumetailor/internal/store"
	"resumetailor/internal/tailor"
	"resumetailor/internal/types"

	"github.com/spf13/cobra"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor [resume-file] [job-description-file]",
	Short: "Tailor a resume for a specific job description",
	Long: `Tailor your resume for a specific job description using AI.
The first argument is your base resume as structured JSON (or a user profile
when --profile is set). The job description comes from the second argument,
a plain text file, or from --job-url which fetches and extracts the posting.

When --user and --job-id are both set, the result is stored and a repeated
invocation returns the cached version unless --force is given.`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if tailorConfig.OutputFormat == "" {
			tailorConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if err := common.ValidateOutputFormat(tailorConfig.OutputFormat, cfg.App.SupportedFormats); err != nil {
			return err
		}
		if len(args) == 2 && tailorJobURL != "" {
			return fmt.Errorf("provide either a job description file or --job-url, not both")
		}
		if len(args) == 1 && tailorJobURL == "" {
			return fmt.Errorf("a job description file or --job-url is required")
		}
		return nil
	},
	RunE: runTailor,
}

var (
	tailorConfig  common.CommandConfig
	tailorJobURL  string
	tailorProfile bool
	tailorForce   bool
	tailorUserID  string
	tailorJobID   string
)

func init() {
	tailorCmd.Flags().StringVarP(&tailorConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	tailorCmd.Flags().StringVar(&tailorConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	tailorCmd.Flags().StringVar(&tailorJobURL, "job-url", "", "Fetch the job description from a URL instead of a file")
	tailorCmd.Flags().BoolVar(&tailorProfile, "profile", false, "Treat the first argument as a user profile instead of a resume")
	tailorCmd.Flags().BoolVar(&tailorForce, "force", false, "Regenerate even when a stored version exists")
	tailorCmd.Flags().StringVar(&tailorUserID, "user", "", "User ID for storing the tailored resume")
	tailorCmd.Flags().StringVar(&tailorJobID, "job-id", "", "Job ID for storing the tailored resume")

	// Add completion for format flag
	_ = tailorCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runTailor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	fileProcessor := common.NewFileProcessor(logger)
	outputHandler := common.NewOutputHandler(logger)

	contents, err := fileProcessor.ValidateAndReadFiles(args[0])
	if err != nil {
		return err
	}
	baseRaw := []byte(contents[0])

	var base types.ResumeJSON
	if tailorProfile {
		var p types.UserProfile
		if err := json.Unmarshal(baseRaw, &p); err != nil {
			return fmt.Errorf("failed to parse profile file: %w", err)
		}
		base = profile.ToResume(&p)
	} else {
		if err := types.ValidateResume(baseRaw); err != nil {
			return err
		}
		if err := json.Unmarshal(baseRaw, &base); err != nil {
			return fmt.Errorf("failed to parse resume file: %w", err)
		}
	}

	var jobText string
	if tailorJobURL != "" {
		fetcher := jobfetch.New(cfg.JobFetch, logger)
		jobText, err = fetcher.Fetch(ctx, tailorJobURL)
		if err != nil {
			return err
		}
	} else {
		jobContents, err := fileProcessor.ValidateAndReadFiles(args[1])
		if err != nil {
			return err
		}
		jobText = jobContents[0]
	}
	if err := common.ValidateJobText(jobText, cfg.App.MinJobTextLength); err != nil {
		return err
	}

	extractAIConfig := cfg.GetExtractConfig()
	extractService, err := ai.NewService(&extractAIConfig, "extract", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	tailorAIConfig := cfg.GetTailorConfig()
	tailorService, err := ai.NewService(&tailorAIConfig, "tailor", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	logger.Info("Starting resume tailoring",
		"job_chars", len(jobText),
		"from_url", tailorJobURL != "",
		"output_format", tailorConfig.OutputFormat)

	// Stored mode: tailor once per (user, job) and reuse the result.
	if tailorUserID != "" && tailorJobID != "" {
		records, err := store.New(cfg.Store, logger)
		if err != nil {
			return fmt.Errorf("failed to open tailored resume store: %w", err)
		}
		defer func() {
			if err := records.Close(); err != nil {
				logger.LogError(err, "Failed to close tailored resume store")
			}
		}()

		engine := tailor.New(extractService, tailorService, records, logger)
		record, cacheHit, err := engine.TailorForJob(ctx, tailorUserID, tailorJobID, &base, jobText, tailorForce)
		if err != nil {
			return fmt.Errorf("failed to tailor resume: %w", err)
		}
		logger.Info("Resume tailoring completed successfully",
			"record_id", record.ID, "cache_hit", cacheHit)
		return outputHandler.HandleOutput(record, tailorConfig)
	}

	engine := tailor.New(extractService, tailorService, nil, logger)
	requirements, extractUsage, err := engine.ExtractRequirements(ctx, jobText)
	if err != nil {
		return fmt.Errorf("failed to extract job requirements: %w", err)
	}
	if extractUsage != nil {
		logger.Info("AI token usage", "operation", "extract",
			"input_tokens", extractUsage.InputTokens,
			"output_tokens", extractUsage.OutputTokens,
			"total_tokens", extractUsage.TotalTokens)
	}

	result, tailorUsage, err := engine.Tailor(ctx, &base, requirements)
	if err != nil {
		return fmt.Errorf("failed to tailor resume: %w", err)
	}
	if tailorUsage != nil {
		logger.Info("AI token usage", "operation", "tailor",
			"input_tokens", tailorUsage.InputTokens,
			"output_tokens", tailorUsage.OutputTokens,
			"total_tokens", tailorUsage.TotalTokens)
	}

	logger.Info("Resume tailoring completed successfully")
	return outputHandler.HandleOutput(*result, tailorConfig)
}
