package llm

import (
	"os"
	"strconv"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	// TaskChat answers free-form conversation that matched no command.
	TaskChat TaskType = "chat"
	// TaskExplain turns an anomaly report into a short plain-language note.
	TaskExplain TaskType = "explain"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutMs   int     `yaml:"timeout_ms"` // overrides global if > 0
}

// Config holds all configuration for the chat collaborator.
type Config struct {
	Enabled    bool                    `yaml:"enabled"`
	LogCalls   bool                    `yaml:"log_calls"`
	Endpoint   string                  `yaml:"endpoint"`
	Model      string                  `yaml:"model"`
	TimeoutMs  int                     `yaml:"timeout_ms"`
	MaxRetries int                     `yaml:"max_retries"`
	Tasks      map[TaskType]TaskConfig `yaml:"tasks"`
}

// DefaultConfig returns a Config with sensible defaults.
// The collaborator is disabled by default.
func DefaultConfig() Config {
	return Config{
		Enabled:    false,
		LogCalls:   false,
		Endpoint:   "http://localhost:11434",
		Model:      "llama3.2",
		TimeoutMs:  8000,
		MaxRetries: 0,
		Tasks: map[TaskType]TaskConfig{
			TaskChat:    {Temperature: 0.6, MaxTokens: 512, TimeoutMs: 8000},
			TaskExplain: {Temperature: 0.2, MaxTokens: 256, TimeoutMs: 6000},
		},
	}
}

// LoadConfig reads configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()
	cfg.ApplyEnv(os.Getenv)
	return cfg
}

// ApplyEnv overrides c from TURTLE_LLM_* variables looked up with getenv.
// Invalid values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("TURTLE_LLM_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enabled = b
		}
	}
	if v := getenv("TURTLE_LLM_LOG_CALLS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.LogCalls = b
		}
	}
	if v := getenv("TURTLE_LLM_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := getenv("TURTLE_LLM_MODEL"); v != "" {
		c.Model = v
	}
	if v := getenv("TURTLE_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TimeoutMs = n
		}
	}
	if v := getenv("TURTLE_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.MaxRetries = n
		}
	}

	applyTaskTimeoutEnv(c, getenv, TaskChat, "TURTLE_LLM_CHAT_TIMEOUT_MS")
	applyTaskTimeoutEnv(c, getenv, TaskExplain, "TURTLE_LLM_EXPLAIN_TIMEOUT_MS")
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c Config) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *Config, getenv func(string) string, task TaskType, envName string) {
	v := getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	if cfg.Tasks == nil {
		cfg.Tasks = make(map[TaskType]TaskConfig)
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
