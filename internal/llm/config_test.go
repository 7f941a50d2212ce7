package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_DisabledWithChatTask(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 8000, cfg.TaskTimeout(TaskChat))
	assert.Zero(t, cfg.MaxRetries)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TURTLE_LLM_ENABLED", "true")
	t.Setenv("TURTLE_LLM_MODEL", "qwen2.5")
	t.Setenv("TURTLE_LLM_TIMEOUT_MS", "9000")
	t.Setenv("TURTLE_LLM_EXPLAIN_TIMEOUT_MS", "7000")

	cfg := LoadConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "qwen2.5", cfg.Model)
	assert.Equal(t, 9000, cfg.TimeoutMs)
	assert.Equal(t, 7000, cfg.TaskTimeout(TaskExplain))
	assert.Equal(t, 8000, cfg.TaskTimeout(TaskChat))
}

func TestLoadConfig_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("TURTLE_LLM_ENABLED", "maybe")
	t.Setenv("TURTLE_LLM_CHAT_TIMEOUT_MS", "not-a-number")
	t.Setenv("TURTLE_LLM_MAX_RETRIES", "-3")

	cfg := LoadConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 8000, cfg.TaskTimeout(TaskChat))
	assert.Zero(t, cfg.MaxRetries)
}

func TestTaskTimeout_FallsBackToGlobal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tasks = nil
	cfg.TimeoutMs = 1234
	assert.Equal(t, 1234, cfg.TaskTimeout(TaskChat))
}
