package agents

import (
	"context"
	"sync"

	"github.com/vominhhuy13101999/agent-test/framework"
)

// scriptedModel answers Generate calls through a reply function and records
// every prompt it sees.
type scriptedModel struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
}

func (m *scriptedModel) Generate(ctx context.Context, prompt string, options *framework.LLMOptions) (*framework.LLMResponse, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.reply == nil {
		return &framework.LLMResponse{Text: "ok"}, nil
	}
	text, err := m.reply(prompt)
	if err != nil {
		return nil, err
	}
	return &framework.LLMResponse{Text: text}, nil
}

func (m *scriptedModel) Chat(ctx context.Context, messages []framework.Message, options *framework.LLMOptions) (*framework.LLMResponse, error) {
	var prompt string
	if len(messages) > 0 {
		prompt = messages[len(messages)-1].Content
	}
	return m.Generate(ctx, prompt, options)
}

func (m *scriptedModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
