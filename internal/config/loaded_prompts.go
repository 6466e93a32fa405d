package config

import (
	"sync"
)

var (
	loadedPrompts     AllLoadedPrompts
	loadedPromptsOnce sync.Once
)

// LoadedPrompts holds the content of prompts loaded from files
type LoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// LoadedSystemPrompts contains loaded system-level instructions
type LoadedSystemPrompts struct {
	Tailor  string
	Extract string
	Parse   string
}

// LoadedUserPrompts contains loaded user-level prompt templates
type LoadedUserPrompts struct {
	Tailor  string
	Extract string
	Parse   string
}

// OperationLoadedPrompts holds loaded prompts for a specific operation
type OperationLoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// AllLoadedPrompts holds all loaded prompts for all operations
type AllLoadedPrompts struct {
	Global  LoadedPrompts
	Tailor  OperationLoadedPrompts
	Extract OperationLoadedPrompts
	Parse   OperationLoadedPrompts
}

// GetPromptsForOperation returns a copy of the loaded prompts for an operation type
func GetPromptsForOperation(operationType string) OperationLoadedPrompts {
	var result OperationLoadedPrompts

	switch operationType {
	case "tailor":
		result = loadedPrompts.Tailor
		logPromptSource("tailor", &result)
	case "extract":
		result = loadedPrompts.Extract
		logPromptSource("extract", &result)
	case "parse":
		result = loadedPrompts.Parse
		logPromptSource("parse", &result)
	default:
		result = OperationLoadedPrompts{
			SystemPrompts: loadedPrompts.Global.SystemPrompts,
			UserPrompts:   loadedPrompts.Global.UserPrompts,
		}
		logPromptSource("global", &result)
	}

	return result
}

// logPromptSource logs where each prompt came from for debugging purposes
func logPromptSource(operationType string, prompts *OperationLoadedPrompts) {
	// Prompt source information can be determined if needed for debugging
}
