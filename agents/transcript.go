package agents

import (
	"time"

	"github.com/vominhhuy13101999/agent-test/framework"
)

// TurnRecord is one fully processed request as written to the audit trail.
type TurnRecord struct {
	SessionID  string               `json:"session_id"`
	UserID     string               `json:"user_id,omitempty"`
	Query      string               `json:"query"`
	AgentType  framework.AgentType  `json:"agent_type"`
	Confidence framework.Confidence `json:"confidence"`
	Response   string               `json:"response"`
	Status     string               `json:"status"`
	Documents  int                  `json:"documents"`
	Duration   time.Duration        `json:"duration"`
	CreatedAt  time.Time            `json:"created_at"`
}

// Transcript receives a record for every processed turn. Implementations must
// tolerate concurrent calls; failures are the implementation's to report, the
// orchestrator never blocks on them.
type Transcript interface {
	Record(turn TurnRecord) error
}
