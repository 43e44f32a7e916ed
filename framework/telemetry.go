package framework

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

// EventType categorizes telemetry events.
type EventType string

const (
	EventRouteDecided   EventType = "route_decided"
	EventStageStart     EventType = "stage_start"
	EventStageFinish    EventType = "stage_finish"
	EventAgentInvoked   EventType = "agent_invoked"
	EventModelCall      EventType = "model_call"
	EventModelResponse  EventType = "model_response"
	EventRateLimited    EventType = "rate_limited"
	EventFallbackUsed   EventType = "fallback_used"
	EventSessionUpdated EventType = "session_updated"
)

// Event captures structured telemetry data.
type Event struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"session_id,omitempty"`
	Agent     AgentType              `json:"agent,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Telemetry captures execution traces emitted by the orchestration runtime.
// Production deployments can implement exporters here, while tests typically
// swap in lightweight collectors.
type Telemetry interface {
	Emit(event Event)
}

// MultiplexTelemetry broadcasts events to multiple sinks.
type MultiplexTelemetry struct {
	Sinks []Telemetry
}

// Emit forwards the event to all registered sinks.
func (m MultiplexTelemetry) Emit(event Event) {
	for _, s := range m.Sinks {
		s.Emit(event)
	}
}

// JSONFileTelemetry writes events as newline-delimited JSON to a file so
// external tools can tail and process the stream in real time.
type JSONFileTelemetry struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewJSONFileTelemetry opens (or creates) the log file.
func NewJSONFileTelemetry(path string) (*JSONFileTelemetry, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONFileTelemetry{file: f, enc: json.NewEncoder(f)}, nil
}

// Emit writes the JSON record.
func (j *JSONFileTelemetry) Emit(event Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.enc != nil {
		_ = j.enc.Encode(event)
	}
}

// Close releases the file handle.
func (j *JSONFileTelemetry) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file != nil {
		return j.file.Close()
	}
	return nil
}

// LoggerTelemetry emits events via the standard logger. Intentionally tiny
// yet immensely helpful while debugging routing locally because every stage
// transition becomes visible without extra tooling.
type LoggerTelemetry struct {
	Logger *log.Logger
}

// Emit logs the event.
func (t LoggerTelemetry) Emit(event Event) {
	logger := t.Logger
	if logger == nil {
		logger = log.Default()
	}
	if event.Agent != "" {
		logger.Printf("[%s] agent=%s session=%s %s", event.Type, event.Agent, event.SessionID, event.Message)
		return
	}
	logger.Printf("[%s] session=%s %s", event.Type, event.SessionID, event.Message)
}

// EmitEvent is a nil-safe helper used by components holding an optional sink.
func EmitEvent(t Telemetry, event Event) {
	if t == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	t.Emit(event)
}
