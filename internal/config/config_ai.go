package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetTailorConfig returns the AI configuration for tailor operations with fallback to global config
func (c *Config) GetTailorConfig() OperationAIConfig {
	config := c.AI.Tailor

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply tailor-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.Tailor == "" {
		config.CustomPrompts.SystemPrompts.Tailor = c.AI.CustomPrompts.SystemPrompts.Tailor
	}
	if config.CustomPrompts.UserPrompts.Tailor == "" {
		config.CustomPrompts.UserPrompts.Tailor = c.AI.CustomPrompts.UserPrompts.Tailor
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.TailorFile == "" {
		config.CustomPrompts.SystemPrompts.TailorFile = c.AI.CustomPrompts.SystemPrompts.TailorFile
	}
	if config.CustomPrompts.UserPrompts.TailorFile == "" {
		config.CustomPrompts.UserPrompts.TailorFile = c.AI.CustomPrompts.UserPrompts.TailorFile
	}

	return config
}

// GetExtractConfig returns the AI configuration for extract operations with fallback to global config
func (c *Config) GetExtractConfig() OperationAIConfig {
	config := c.AI.Extract

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply extract-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.Extract == "" {
		config.CustomPrompts.SystemPrompts.Extract = c.AI.CustomPrompts.SystemPrompts.Extract
	}
	if config.CustomPrompts.UserPrompts.Extract == "" {
		config.CustomPrompts.UserPrompts.Extract = c.AI.CustomPrompts.UserPrompts.Extract
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.ExtractFile == "" {
		config.CustomPrompts.SystemPrompts.ExtractFile = c.AI.CustomPrompts.SystemPrompts.ExtractFile
	}
	if config.CustomPrompts.UserPrompts.ExtractFile == "" {
		config.CustomPrompts.UserPrompts.ExtractFile = c.AI.CustomPrompts.UserPrompts.ExtractFile
	}

	return config
}

// GetParseConfig returns the AI configuration for parse operations with fallback to global config
func (c *Config) GetParseConfig() OperationAIConfig {
	config := c.AI.Parse

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply parse-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.Parse == "" {
		config.CustomPrompts.SystemPrompts.Parse = c.AI.CustomPrompts.SystemPrompts.Parse
	}
	if config.CustomPrompts.UserPrompts.Parse == "" {
		config.CustomPrompts.UserPrompts.Parse = c.AI.CustomPrompts.UserPrompts.Parse
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.ParseFile == "" {
		config.CustomPrompts.SystemPrompts.ParseFile = c.AI.CustomPrompts.SystemPrompts.ParseFile
	}
	if config.CustomPrompts.UserPrompts.ParseFile == "" {
		config.CustomPrompts.UserPrompts.ParseFile = c.AI.CustomPrompts.UserPrompts.ParseFile
	}

	return config
}

// GetLoadedTailorPrompts returns a copy of the loaded prompts for tailor operation
func (c *Config) GetLoadedTailorPrompts() OperationLoadedPrompts {
	return loadedPrompts.Tailor
}

// GetLoadedExtractPrompts returns a copy of the loaded prompts for extract operation
func (c *Config) GetLoadedExtractPrompts() OperationLoadedPrompts {
	return loadedPrompts.Extract
}

// GetLoadedParsePrompts returns a copy of the loaded prompts for parse operation
func (c *Config) GetLoadedParsePrompts() OperationLoadedPrompts {
	return loadedPrompts.Parse
}

// GetLoadedGlobalPrompts returns a copy of the loaded global prompts
func (c *Config) GetLoadedGlobalPrompts() LoadedPrompts {
	return loadedPrompts.Global
}
