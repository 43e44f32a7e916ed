package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vominhhuy13101999/agent-test/framework"
	"github.com/vominhhuy13101999/agent-test/llm"
)

// RateLimitMessage is the sentinel returned in place of a response when the
// transport reports quota exhaustion or an exceeded deadline. Callers treat
// it as a signal to abort a multi-step pipeline early rather than continue
// with garbage input.
const RateLimitMessage = "Rate limit exceeded. Please try again in a moment."

const noResponseMessage = "(no response)"

// errorPrefix marks non-transient adapter failures in the returned text.
const errorPrefix = "Error: "

// Invoker wraps a single call to a named persona. It never returns an error:
// transient failures become the rate-limit sentinel, everything else becomes
// an "Error: ..." string, so pipeline steps deal in text end to end.
type Invoker struct {
	Model     framework.LanguageModel
	Telemetry framework.Telemetry

	// Timeout bounds each remote call. Zero means the caller's context rules.
	Timeout time.Duration
}

// Invoke sends a fully-formed prompt to the persona's model and returns the
// raw response text. No retries happen here; retry policy belongs to the
// transport.
func (inv *Invoker) Invoke(ctx context.Context, persona framework.Persona, prompt string) string {
	if inv.Model == nil {
		return errorPrefix + "no language model configured"
	}
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	full := prompt
	if persona.Instruction != "" {
		full = persona.Instruction + "\n\n" + prompt
	}
	resp, err := inv.Model.Generate(ctx, full, &framework.LLMOptions{Model: persona.Model})
	framework.EmitEvent(inv.Telemetry, framework.Event{
		Type:    framework.EventAgentInvoked,
		Message: persona.Name,
		Metadata: map[string]interface{}{
			"prompt_chars": len(full),
			"failed":       err != nil,
		},
	})
	if err != nil {
		if errors.Is(err, llm.ErrRateLimited) || errors.Is(err, llm.ErrUnavailable) {
			framework.EmitEvent(inv.Telemetry, framework.Event{
				Type:    framework.EventRateLimited,
				Message: persona.Name,
			})
			return RateLimitMessage
		}
		return fmt.Sprintf("%s%v", errorPrefix, err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return noResponseMessage
	}
	return resp.Text
}

// IsDegraded reports whether an adapter response is the rate-limit sentinel
// or an error string, i.e. not usable model output.
func IsDegraded(response string) bool {
	return response == RateLimitMessage ||
		response == noResponseMessage ||
		strings.HasPrefix(response, errorPrefix)
}
