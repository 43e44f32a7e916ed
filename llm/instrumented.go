package llm

import (
	"context"
	"errors"
	"time"

	"github.com/vominhhuy13101999/agent-test/framework"
)

// InstrumentedModel wraps a LanguageModel and emits telemetry for prompts and
// responses, including the typed failure class so operators can watch rate
// limits accumulate without enabling debug payload logging.
type InstrumentedModel struct {
	Inner     framework.LanguageModel
	Telemetry framework.Telemetry
}

// NewInstrumentedModel wires a telemetry sink around a transport.
func NewInstrumentedModel(inner framework.LanguageModel, telemetry framework.Telemetry) *InstrumentedModel {
	return &InstrumentedModel{Inner: inner, Telemetry: telemetry}
}

// Generate delegates to the inner model and reports timing.
func (m *InstrumentedModel) Generate(ctx context.Context, prompt string, options *framework.LLMOptions) (*framework.LLMResponse, error) {
	framework.EmitEvent(m.Telemetry, framework.Event{
		Type:     framework.EventModelCall,
		Metadata: map[string]interface{}{"op": "generate", "prompt_chars": len(prompt)},
	})
	start := time.Now()
	resp, err := m.Inner.Generate(ctx, prompt, options)
	m.emitResponse("generate", start, resp, err)
	return resp, err
}

// Chat delegates to the inner model and reports timing.
func (m *InstrumentedModel) Chat(ctx context.Context, messages []framework.Message, options *framework.LLMOptions) (*framework.LLMResponse, error) {
	framework.EmitEvent(m.Telemetry, framework.Event{
		Type:     framework.EventModelCall,
		Metadata: map[string]interface{}{"op": "chat", "messages": len(messages)},
	})
	start := time.Now()
	resp, err := m.Inner.Chat(ctx, messages, options)
	m.emitResponse("chat", start, resp, err)
	return resp, err
}

func (m *InstrumentedModel) emitResponse(op string, start time.Time, resp *framework.LLMResponse, err error) {
	meta := map[string]interface{}{
		"op":          op,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	event := framework.Event{Type: framework.EventModelResponse, Metadata: meta}
	switch {
	case err == nil:
		if resp != nil {
			meta["response_chars"] = len(resp.Text)
		}
	case errors.Is(err, ErrRateLimited):
		event.Type = framework.EventRateLimited
		meta["error"] = err.Error()
	default:
		meta["error"] = err.Error()
	}
	framework.EmitEvent(m.Telemetry, event)
}
