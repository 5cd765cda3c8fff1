package cliconfig

import "os"

// Environment variable names.
const (
	// EnvRuntimeURL overrides the runtime sidecar URL for ad-hoc use.
	EnvRuntimeURL = "WORKFLOW_RUNTIME_URL"

	// EnvContext selects a context without switching the saved one.
	EnvContext = "WORKFLOWCTL_CONTEXT"

	// EnvConfig overrides the config file location.
	EnvConfig = "WORKFLOWCTL_CONFIG"

	// EnvLogLevel and EnvLogFormat control operational logging.
	EnvLogLevel  = "WORKFLOWCTL_LOG_LEVEL"
	EnvLogFormat = "WORKFLOWCTL_LOG_FORMAT"
)

// GetRuntimeURLFromEnv returns the runtime URL from the environment, or
// empty string if not set.
func GetRuntimeURLFromEnv() string {
	return os.Getenv(EnvRuntimeURL)
}

// GetContextFromEnv returns the context name from the environment, or empty
// string if not set.
func GetContextFromEnv() string {
	return os.Getenv(EnvContext)
}

// ResolveContextName resolves which context to use.
// Priority: env var > saved current context.
func ResolveContextName(cfg *Config) string {
	if name := GetContextFromEnv(); name != "" {
		return name
	}
	return cfg.CurrentContext
}

// ResolveRuntimeURL resolves the sidecar URL a command should use.
// Priority: flag > env var > active context > default.
// Pass an empty string when the flag was not provided.
func ResolveRuntimeURL(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if url := GetRuntimeURLFromEnv(); url != "" {
		return url
	}

	cfg, err := Load()
	if err != nil {
		return DefaultRuntimeURL
	}
	if ctx := cfg.Contexts[ResolveContextName(cfg)]; ctx != nil && ctx.RuntimeURL != "" {
		return ctx.RuntimeURL
	}

	return DefaultRuntimeURL
}
