package handoff

import "time"

// Session statuses
const (
	StatusWaiting  = "waiting"
	StatusAssigned = "assigned"
	StatusActive   = "active"
	StatusClosed   = "closed"
)

// Resolutions
const (
	ResolutionResolved   = "resolved"
	ResolutionUnresolved = "unresolved"
	ResolutionEscalated  = "escalated"
)

// Priorities
const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"
)

// Message roles
const (
	RoleUser   = "user"
	RoleAgent  = "agent"
	RoleSystem = "system"
)

// Session is one support-handoff conversation between a customer and an
// operator. It lives in a redis hash until the session TTL expires.
type Session struct {
	ID             string            `json:"session_id"`
	UserID         string            `json:"user_id"`
	UserPhone      string            `json:"user_phone"`
	UserName       string            `json:"user_name"`
	UserEmail      string            `json:"user_email"`
	Status         string            `json:"status"`
	Query          string            `json:"query"`
	ContextPreview string            `json:"context_preview"`
	CreatedAt      time.Time         `json:"created_at"`
	Language       string            `json:"language"`
	Category       string            `json:"category"`
	Priority       string            `json:"priority"`
	AgentID        string            `json:"agent_id"`
	AgentName      string            `json:"agent_name"`
	AssignedAt     time.Time         `json:"assigned_at,omitempty"`
	ClosedAt       time.Time         `json:"closed_at,omitempty"`
	Resolution     string            `json:"resolution"`
	Rating         int               `json:"rating,omitempty"`
	Messages       []Message         `json:"messages"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Message is one entry in a session transcript.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Contact carries the optional customer identity attached to a new session.
type Contact struct {
	UserID string
	Phone  string
	Name   string
	Email  string
}

// Notification is published to operators when a new session enters the queue.
type Notification struct {
	Event        string    `json:"event"`
	SessionID    string    `json:"session_id"`
	UserName     string    `json:"user_name"`
	Language     string    `json:"language"`
	Category     string    `json:"category"`
	Priority     string    `json:"priority"`
	QueryPreview string    `json:"query_preview"`
	Timestamp    time.Time `json:"timestamp"`
}

// Agent is an operator currently marked online.
type Agent struct {
	AgentID  string    `json:"agent_id"`
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"last_seen"`
}
