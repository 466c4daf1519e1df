// Package memory persists the agent's conversation memories: one record per
// completed flow invocation, written after the flow's externally observable
// effect has occurred or definitively failed to occur.
package memory

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Record is one persisted interaction. Payload varies per flow: transaction
// hash/amount/status for transfers, a balances map for queries, the new
// address for provisioning.
type Record struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	AgentID   string          `json:"agent_id"`
	RoomID    string          `json:"room_id"`
	Text      string          `json:"text"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store is an append-only interaction log backed by sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the interaction DB under dataDir/memories.db.
func Open(dataDir string) (*Store, error) {
	return OpenDSN(filepath.Join(dataDir, "memories.db"))
}

// OpenDSN opens (or creates) an interaction DB using the given sqlite
// DSN/path. Tests may pass ":memory:" to avoid touching disk.
func OpenDSN(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open memories db: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS interactions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	agent_id TEXT NOT NULL,
	room_id TEXT NOT NULL,
	text TEXT NOT NULL,
	action TEXT NOT NULL,
	payload TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id, created_at);
`)
	if err != nil {
		return fmt.Errorf("create interactions table: %w", err)
	}
	return nil
}

// Close closes the underlying DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append writes one interaction record. The id is assigned here; the stored
// record is returned so callers can reference it.
func (s *Store) Append(userID, agentID, roomID, text, action string, payload any) (*Record, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("memory store not initialized")
	}
	if userID == "" || action == "" {
		return nil, fmt.Errorf("user id and action are required")
	}

	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		raw = b
	}

	record := &Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		AgentID:   agentID,
		RoomID:    roomID,
		Text:      text,
		Action:    action,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(`
INSERT INTO interactions (id, user_id, agent_id, room_id, text, action, payload, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, record.ID, record.UserID, record.AgentID, record.RoomID, record.Text, record.Action, string(raw), record.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("persist interaction: %w", err)
	}
	return record, nil
}

// ListByUser returns a user's interactions, most recent first.
func (s *Store) ListByUser(userID string, limit int) ([]*Record, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("memory store not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
SELECT id, user_id, agent_id, room_id, text, action, COALESCE(payload, ''), created_at
FROM interactions WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var record Record
		var payload, created string
		if err := rows.Scan(&record.ID, &record.UserID, &record.AgentID, &record.RoomID, &record.Text, &record.Action, &payload, &created); err != nil {
			return nil, err
		}
		if payload != "" {
			record.Payload = json.RawMessage(payload)
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			record.CreatedAt = ts
		}
		out = append(out, &record)
	}
	return out, rows.Err()
}
