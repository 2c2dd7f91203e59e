package errors

import (
	"fmt"
	"net/http"
)

// Redis errors

// RedisUnavailable is returned when the cache server cannot be reached.
func RedisUnavailable(cause error) *AppError {
	return New(ErrTypeRedis, "redis unavailable", cause, http.StatusServiceUnavailable).WithStack()
}

// RedisCommandFailed wraps a failed redis operation.
func RedisCommandFailed(operation string, cause error) *AppError {
	return New(ErrTypeRedis, fmt.Sprintf("redis command failed: %s", operation), cause, http.StatusInternalServerError).WithStack()
}

// Launcher errors

// ProcessStartFailed is returned when a child process could not be spawned.
func ProcessStartFailed(name string, cause error) *AppError {
	return New(ErrTypeLauncher, fmt.Sprintf("failed to start process: %s", name), cause, http.StatusInternalServerError).WithStack()
}

// ProcessScanFailed is returned when the preflight process scan fails.
func ProcessScanFailed(cause error) *AppError {
	return New(ErrTypeLauncher, "failed to scan processes", cause, http.StatusInternalServerError).WithStack()
}

// Session errors

// SessionNotFound is returned when a handoff session id is unknown or expired.
func SessionNotFound(id string) *AppError {
	return New(ErrTypeSession, fmt.Sprintf("session not found: %s", id), nil, http.StatusNotFound).WithStack()
}

// SessionStoreFailed wraps a failed session persistence operation.
func SessionStoreFailed(operation string, cause error) *AppError {
	return New(ErrTypeSession, fmt.Sprintf("session store failed: %s", operation), cause, http.StatusInternalServerError).WithStack()
}

// OMS errors

// OrderNotFound is returned for unknown order ids.
func OrderNotFound(id string) *AppError {
	return New(ErrTypeOMS, fmt.Sprintf("order not found: %s", id), nil, http.StatusNotFound).WithStack()
}

// OrderActionRejected is returned when an order operation is not permitted in
// the order's current state.
func OrderActionRejected(action, reason string) *AppError {
	return New(ErrTypeOMS, fmt.Sprintf("%s rejected: %s", action, reason), nil, http.StatusConflict).WithStack()
}

// History errors

// HistoryOpenFailed wraps a failed history database open.
func HistoryOpenFailed(path string, cause error) *AppError {
	return New(ErrTypeHistory, fmt.Sprintf("failed to open history db: %s", path), cause, http.StatusInternalServerError).WithStack()
}

// HistoryQueryFailed wraps a failed history query.
func HistoryQueryFailed(operation string, cause error) *AppError {
	return New(ErrTypeHistory, fmt.Sprintf("history query failed: %s", operation), cause, http.StatusInternalServerError).WithStack()
}
