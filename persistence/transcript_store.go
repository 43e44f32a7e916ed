// Package persistence provides the optional audit trail for processed turns.
// Session routing state never touches disk; the transcript is an append-only
// record kept for offline inspection.
package persistence

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vominhhuy13101999/agent-test/agents"
	"github.com/vominhhuy13101999/agent-test/framework"
)

// TranscriptStore persists turn records in a SQLite database.
type TranscriptStore struct {
	db *sql.DB
}

// NewTranscriptStore opens/creates the database at dbPath.
func NewTranscriptStore(dbPath string) (*TranscriptStore, error) {
	if dbPath == "" {
		return nil, errors.New("transcript db path required")
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	store := &TranscriptStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *TranscriptStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		user_id TEXT,
		query TEXT NOT NULL,
		agent_type TEXT NOT NULL,
		confidence TEXT,
		response TEXT,
		status TEXT NOT NULL,
		documents INTEGER,
		duration_ms INTEGER,
		created_at TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record implements agents.Transcript.
func (s *TranscriptStore) Record(turn agents.TurnRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO turns (session_id, user_id, query, agent_type, confidence, response, status, documents, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		turn.SessionID,
		turn.UserID,
		turn.Query,
		string(turn.AgentType),
		string(turn.Confidence),
		turn.Response,
		turn.Status,
		turn.Documents,
		turn.Duration.Milliseconds(),
		turn.CreatedAt,
	)
	return err
}

// SessionTurns returns the recorded turns for one session, oldest first.
func (s *TranscriptStore) SessionTurns(sessionID string) ([]agents.TurnRecord, error) {
	rows, err := s.db.Query(
		`SELECT session_id, user_id, query, agent_type, confidence, response, status, documents, duration_ms, created_at
		 FROM turns WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []agents.TurnRecord
	for rows.Next() {
		var t agents.TurnRecord
		var agentType, confidence string
		var durationMS int64
		var createdAt time.Time
		if err := rows.Scan(&t.SessionID, &t.UserID, &t.Query, &agentType, &confidence, &t.Response, &t.Status, &t.Documents, &durationMS, &createdAt); err != nil {
			return nil, err
		}
		t.AgentType = framework.AgentType(agentType)
		t.Confidence = framework.Confidence(confidence)
		t.Duration = time.Duration(durationMS) * time.Millisecond
		t.CreatedAt = createdAt
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Close releases the database handle.
func (s *TranscriptStore) Close() error {
	return s.db.Close()
}
