package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// PromptSource represents where a prompt was loaded from
type PromptSource struct {
	Source    string // "file", "operation-config", "global-config", or "default"
	FilePath  string // Set if Source is "file"
	Operation string // The operation this prompt is for
	Type      string // "system" or "user"
}

// GetLoadedPrompts returns the loaded prompt content in a thread-safe way
func GetLoadedPrompts() *AllLoadedPrompts {
	return &loadedPrompts
}

// trackPromptSource tracks the source of a prompt for debugging
func (c *Config) trackPromptSource(source PromptSource) {
	// Prompt source tracking can be implemented when new logging is hooked up
}

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	// Initialize loaded prompts exactly once
	loadedPromptsOnce.Do(func() {
		loadedPrompts = AllLoadedPrompts{}
	})

	// Load global prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.CustomPrompts.SystemPrompts, &loadedPrompts.Global.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load global system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.CustomPrompts.UserPrompts, &loadedPrompts.Global.UserPrompts); err != nil {
		return fmt.Errorf("failed to load global user prompts: %w", err)
	}

	// Load operation-specific prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.Tailor.CustomPrompts.SystemPrompts, &loadedPrompts.Tailor.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load tailor system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Tailor.CustomPrompts.UserPrompts, &loadedPrompts.Tailor.UserPrompts); err != nil {
		return fmt.Errorf("failed to load tailor user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.Extract.CustomPrompts.SystemPrompts, &loadedPrompts.Extract.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load extract system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Extract.CustomPrompts.UserPrompts, &loadedPrompts.Extract.UserPrompts); err != nil {
		return fmt.Errorf("failed to load extract user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.Parse.CustomPrompts.SystemPrompts, &loadedPrompts.Parse.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load parse system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Parse.CustomPrompts.UserPrompts, &loadedPrompts.Parse.UserPrompts); err != nil {
		return fmt.Errorf("failed to load parse user prompts: %w", err)
	}

	// Log summary of prompt sources after loading
	c.logPromptLoadingSummary()

	return nil
}

// loadSystemPromptsFromFiles loads system prompts from files if file paths are specified
func (c *Config) loadSystemPromptsFromFiles(prompts *SystemPrompts, target *LoadedSystemPrompts) error {
	// Load tailor prompt from file if specified
	if prompts.TailorFile != "" {
		content, err := c.loadPromptFromFile(prompts.TailorFile, "system", "tailor")
		if err != nil {
			return err
		}
		target.Tailor = content
	}

	// Load extract prompt from file if specified
	if prompts.ExtractFile != "" {
		content, err := c.loadPromptFromFile(prompts.ExtractFile, "system", "extract")
		if err != nil {
			return err
		}
		target.Extract = content
	}

	// Load parse prompt from file if specified
	if prompts.ParseFile != "" {
		content, err := c.loadPromptFromFile(prompts.ParseFile, "system", "parse")
		if err != nil {
			return err
		}
		target.Parse = content
	}

	return nil
}

// loadUserPromptsFromFiles loads user prompts from files if file paths are specified
func (c *Config) loadUserPromptsFromFiles(prompts *UserPrompts, target *LoadedUserPrompts) error {
	// Load tailor prompt from file if specified
	if prompts.TailorFile != "" {
		content, err := c.loadPromptFromFile(prompts.TailorFile, "user", "tailor")
		if err != nil {
			return err
		}
		target.Tailor = content
	}

	// Load extract prompt from file if specified
	if prompts.ExtractFile != "" {
		content, err := c.loadPromptFromFile(prompts.ExtractFile, "user", "extract")
		if err != nil {
			return err
		}
		target.Extract = content
	}

	// Load parse prompt from file if specified
	if prompts.ParseFile != "" {
		content, err := c.loadPromptFromFile(prompts.ParseFile, "user", "parse")
		if err != nil {
			return err
		}
		target.Parse = content
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	// Track prompt source
	c.trackPromptSource(PromptSource{
		Source:    "file",
		FilePath:  filePath,
		Operation: operation,
		Type:      promptType,
	})

	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	// Log successful loading
	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	// Helper function to validate a file path
	validateFile := func(filePath, promptType, operation string) {
		if filePath == "" {
			return // No file specified, skip validation
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	// Validate global prompt files
	validateFile(c.AI.CustomPrompts.SystemPrompts.TailorFile, "system", "tailor")
	validateFile(c.AI.CustomPrompts.SystemPrompts.ExtractFile, "system", "extract")
	validateFile(c.AI.CustomPrompts.SystemPrompts.ParseFile, "system", "parse")
	validateFile(c.AI.CustomPrompts.UserPrompts.TailorFile, "user", "tailor")
	validateFile(c.AI.CustomPrompts.UserPrompts.ExtractFile, "user", "extract")
	validateFile(c.AI.CustomPrompts.UserPrompts.ParseFile, "user", "parse")

	// Validate operation-specific prompt files
	validateFile(c.AI.Tailor.CustomPrompts.SystemPrompts.TailorFile, "tailor system", "tailor")
	validateFile(c.AI.Tailor.CustomPrompts.UserPrompts.TailorFile, "tailor user", "tailor")
	validateFile(c.AI.Extract.CustomPrompts.SystemPrompts.ExtractFile, "extract system", "extract")
	validateFile(c.AI.Extract.CustomPrompts.UserPrompts.ExtractFile, "extract user", "extract")
	validateFile(c.AI.Parse.CustomPrompts.SystemPrompts.ParseFile, "parse system", "parse")
	validateFile(c.AI.Parse.CustomPrompts.UserPrompts.ParseFile, "parse user", "parse")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary() {
	log.Println("[CONFIG] === Custom Prompt Loading Summary ===")

	promptCount := c.countAndLogLoadedPrompts()

	c.logPromptSummaryFooter(promptCount)
}

// countAndLogLoadedPrompts counts and logs all loaded prompts, returning the total count
func (c *Config) countAndLogLoadedPrompts() int {
	promptCount := 0

	// Check global prompts
	promptCount += c.logGlobalPrompts()

	// Check operation-specific prompts
	promptCount += c.logOperationSpecificPrompts()

	return promptCount
}

// logGlobalPrompts logs global prompt status and returns count
func (c *Config) logGlobalPrompts() int {
	count := 0

	promptChecks := []struct {
		content string
		message string
	}{
		{loadedPrompts.Global.SystemPrompts.Tailor, "[CONFIG] Global system tailor prompt: loaded from config/file"},
		{loadedPrompts.Global.SystemPrompts.Extract, "[CONFIG] Global system extract prompt: loaded from config/file"},
		{loadedPrompts.Global.SystemPrompts.Parse, "[CONFIG] Global system parse prompt: loaded from config/file"},
		{loadedPrompts.Global.UserPrompts.Tailor, "[CONFIG] Global user tailor prompt: loaded from config/file"},
		{loadedPrompts.Global.UserPrompts.Extract, "[CONFIG] Global user extract prompt: loaded from config/file"},
		{loadedPrompts.Global.UserPrompts.Parse, "[CONFIG] Global user parse prompt: loaded from config/file"},
	}

	for _, check := range promptChecks {
		if check.content != "" {
			log.Println(check.message)
			count++
		}
	}

	return count
}

// logOperationSpecificPrompts logs operation-specific prompt status and returns count
func (c *Config) logOperationSpecificPrompts() int {
	count := 0

	promptChecks := []struct {
		content string
		message string
	}{
		{loadedPrompts.Tailor.SystemPrompts.Tailor, "[CONFIG] Tailor-specific system prompt: loaded from config/file"},
		{loadedPrompts.Tailor.UserPrompts.Tailor, "[CONFIG] Tailor-specific user prompt: loaded from config/file"},
		{loadedPrompts.Extract.SystemPrompts.Extract, "[CONFIG] Extract-specific system prompt: loaded from config/file"},
		{loadedPrompts.Extract.UserPrompts.Extract, "[CONFIG] Extract-specific user prompt: loaded from config/file"},
		{loadedPrompts.Parse.SystemPrompts.Parse, "[CONFIG] Parse-specific system prompt: loaded from config/file"},
		{loadedPrompts.Parse.UserPrompts.Parse, "[CONFIG] Parse-specific user prompt: loaded from config/file"},
	}

	for _, check := range promptChecks {
		if check.content != "" {
			log.Println(check.message)
			count++
		}
	}

	return count
}

// logPromptSummaryFooter logs the summary footer with total count
func (c *Config) logPromptSummaryFooter(promptCount int) {
	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}

	log.Println("[CONFIG] ==========================================")
}
