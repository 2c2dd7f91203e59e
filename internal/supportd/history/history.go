// Package history archives closed support sessions in sqlite so the
// dashboard can report on them after the redis session TTL has passed.
package history

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/birmarket/supportd/internal/errors"
	"github.com/birmarket/supportd/internal/supportd/handoff"
	"github.com/birmarket/supportd/pkg/util"
)

const schema = `
CREATE TABLE IF NOT EXISTS closed_sessions (
	session_id   TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	user_name    TEXT NOT NULL,
	category     TEXT NOT NULL,
	language     TEXT NOT NULL,
	priority     TEXT NOT NULL,
	resolution   TEXT NOT NULL,
	rating       INTEGER NOT NULL DEFAULT 0,
	agent_id     TEXT NOT NULL DEFAULT '',
	agent_name   TEXT NOT NULL DEFAULT '',
	message_count INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMP NOT NULL,
	closed_at    TIMESTAMP NOT NULL,
	transcript   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_closed_sessions_category ON closed_sessions(category);
CREATE INDEX IF NOT EXISTS idx_closed_sessions_closed_at ON closed_sessions(closed_at);
`

// Record is one archived session row.
type Record struct {
	SessionID    string            `json:"session_id"`
	UserID       string            `json:"user_id"`
	UserName     string            `json:"user_name"`
	Category     string            `json:"category"`
	Language     string            `json:"language"`
	Priority     string            `json:"priority"`
	Resolution   string            `json:"resolution"`
	Rating       int               `json:"rating"`
	AgentID      string            `json:"agent_id"`
	AgentName    string            `json:"agent_name"`
	MessageCount int               `json:"message_count"`
	CreatedAt    time.Time         `json:"created_at"`
	ClosedAt     time.Time         `json:"closed_at"`
	Transcript   []handoff.Message `json:"transcript,omitempty"`
}

// Summary aggregates the archive for the stats endpoint.
type Summary struct {
	TotalClosed  int            `json:"total_closed"`
	ByCategory   map[string]int `json:"by_category"`
	ByResolution map[string]int `json:"by_resolution"`
	AvgRating    float64        `json:"avg_rating"`
}

// Query filters archive listings.
type Query struct {
	Category   string
	Resolution string
	Limit      int
}

type Store struct {
	db *sql.DB
}

// Open creates or opens the archive database and applies the schema.
func Open(path string) (*Store, error) {
	if err := util.PrepareDir(filepath.Dir(path)); err != nil {
		return nil, errors.HistoryOpenFailed(path, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.HistoryOpenFailed(path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.HistoryOpenFailed(path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Archive inserts a closed session. Re-archiving the same session replaces
// the previous row.
func (s *Store) Archive(session *handoff.Session) error {
	transcript, err := json.Marshal(session.Messages)
	if err != nil {
		return errors.HistoryQueryFailed("marshal transcript", err)
	}

	closedAt := session.ClosedAt
	if closedAt.IsZero() {
		closedAt = time.Now()
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO closed_sessions
		(session_id, user_id, user_name, category, language, priority,
		 resolution, rating, agent_id, agent_name, message_count,
		 created_at, closed_at, transcript)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.UserName, session.Category,
		session.Language, session.Priority, session.Resolution, session.Rating,
		session.AgentID, session.AgentName, len(session.Messages),
		session.CreatedAt, closedAt, string(transcript),
	)
	if err != nil {
		return errors.HistoryQueryFailed("archive", err)
	}
	return nil
}

// List returns archived sessions, newest first. Transcripts are included.
func (s *Store) List(q Query) ([]Record, error) {
	query := `
		SELECT session_id, user_id, user_name, category, language, priority,
		       resolution, rating, agent_id, agent_name, message_count,
		       created_at, closed_at, transcript
		FROM closed_sessions WHERE 1=1`
	var args []interface{}

	if q.Category != "" {
		query += " AND category = ?"
		args = append(args, q.Category)
	}
	if q.Resolution != "" {
		query += " AND resolution = ?"
		args = append(args, q.Resolution)
	}
	query += " ORDER BY closed_at DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.HistoryQueryFailed("list", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var transcript string
		if err := rows.Scan(
			&r.SessionID, &r.UserID, &r.UserName, &r.Category, &r.Language,
			&r.Priority, &r.Resolution, &r.Rating, &r.AgentID, &r.AgentName,
			&r.MessageCount, &r.CreatedAt, &r.ClosedAt, &transcript,
		); err != nil {
			return nil, errors.HistoryQueryFailed("scan", err)
		}
		if transcript != "" {
			json.Unmarshal([]byte(transcript), &r.Transcript)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.HistoryQueryFailed("list", err)
	}
	return records, nil
}

// Get loads one archived session.
func (s *Store) Get(sessionID string) (*Record, error) {
	records, err := s.listByID(sessionID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.NotFound("archived session "+sessionID, nil)
	}
	return &records[0], nil
}

func (s *Store) listByID(sessionID string) ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT session_id, user_id, user_name, category, language, priority,
		       resolution, rating, agent_id, agent_name, message_count,
		       created_at, closed_at, transcript
		FROM closed_sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, errors.HistoryQueryFailed("get", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var transcript string
		if err := rows.Scan(
			&r.SessionID, &r.UserID, &r.UserName, &r.Category, &r.Language,
			&r.Priority, &r.Resolution, &r.Rating, &r.AgentID, &r.AgentName,
			&r.MessageCount, &r.CreatedAt, &r.ClosedAt, &transcript,
		); err != nil {
			return nil, errors.HistoryQueryFailed("scan", err)
		}
		if transcript != "" {
			json.Unmarshal([]byte(transcript), &r.Transcript)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Summarize aggregates the whole archive.
func (s *Store) Summarize() (*Summary, error) {
	summary := &Summary{
		ByCategory:   make(map[string]int),
		ByResolution: make(map[string]int),
	}

	rows, err := s.db.Query(`SELECT category, resolution, rating FROM closed_sessions`)
	if err != nil {
		return nil, errors.HistoryQueryFailed("summarize", err)
	}
	defer rows.Close()

	var ratingSum, ratingCount int
	for rows.Next() {
		var category, resolution string
		var rating int
		if err := rows.Scan(&category, &resolution, &rating); err != nil {
			return nil, errors.HistoryQueryFailed("scan", err)
		}
		summary.TotalClosed++
		summary.ByCategory[category]++
		summary.ByResolution[resolution]++
		if rating > 0 {
			ratingSum += rating
			ratingCount++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.HistoryQueryFailed("summarize", err)
	}
	if ratingCount > 0 {
		summary.AvgRating = float64(ratingSum) / float64(ratingCount)
	}
	return summary, nil
}
