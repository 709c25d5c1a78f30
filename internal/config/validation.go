package config

import (
	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
)

// Validate checks the configuration after defaults and overrides are applied.
func (c *Config) Validate() error {
	if c.ContentDir == "" {
		return ferrors.ConfigError("content_dir is required").Build()
	}
	if c.Concurrency < 1 {
		return ferrors.ConfigError("concurrency must be at least 1").
			WithContext("concurrency", c.Concurrency).Build()
	}
	if _, err := ParseHookErrorPolicy(string(c.HookErrors)); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid hook_errors").Build()
	}
	for _, ext := range c.Markdown.Extensions {
		if len(ext) < 2 {
			return ferrors.ConfigError("invalid markdown extension").WithContext("extension", ext).Build()
		}
	}
	return nil
}
