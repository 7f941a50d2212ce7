package llm

import (
	"context"
	"fmt"
	"strings"
)

const chatSystemPrompt = `You are turtle, a terse terminal assistant that drives a desktop through
safety-gated shell commands. Answer in at most three short sentences. If the
user seems to want an action, suggest one of the phrasings the tool accepts,
such as "open <app> on the left half of my second monitor", "kill <process>",
"show monitors" or "status".`

const explainSystemPrompt = `You review anomaly reports produced after a shell command ran.
In one or two sentences, say what most likely happened and whether the user
should look into it. Do not invent findings.`

// Assistant answers conversational input and explains anomaly reports.
type Assistant struct {
	client Client
}

// NewAssistant wraps client.
func NewAssistant(client Client) *Assistant {
	return &Assistant{client: client}
}

// Reply answers free-form text that matched no command.
func (a *Assistant) Reply(ctx context.Context, text string) (string, error) {
	return a.generate(ctx, GenerateRequest{
		Task:         TaskChat,
		SystemPrompt: chatSystemPrompt,
		UserPrompt:   text,
	})
}

// Explain summarizes the findings reported after operation ran.
func (a *Assistant) Explain(ctx context.Context, operation string, findings []string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Operation: %s\nFindings:\n", operation)
	for _, f := range findings {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	return a.generate(ctx, GenerateRequest{
		Task:         TaskExplain,
		SystemPrompt: explainSystemPrompt,
		UserPrompt:   b.String(),
	})
}

func (a *Assistant) generate(ctx context.Context, req GenerateRequest) (string, error) {
	resp, err := a.client.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}
