package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestErrorCreation(t *testing.T) {
	err := New("test", "test message", nil, http.StatusBadRequest)
	if err.Type != "test" || err.Message != "test message" || err.Code != http.StatusBadRequest {
		t.Errorf("New() created incorrect error: %v", err)
	}

	cause := fmt.Errorf("original error")
	err = New("test", "test with cause", cause, http.StatusInternalServerError)
	if err.Cause != cause {
		t.Errorf("New() did not set cause correctly: %v", err)
	}

	expected := "test: test with cause: original error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestErrorWrapping(t *testing.T) {
	original := fmt.Errorf("original error")
	wrapped := Wrap(original, "wrapped", "wrapped message", http.StatusBadRequest)

	if wrapped.Type != "wrapped" || wrapped.Message != "wrapped message" {
		t.Errorf("Wrap() created incorrect error: %v", wrapped)
	}

	if wrapped.Cause != original {
		t.Errorf("Wrap() did not set cause correctly")
	}

	// Wrapping an AppError keeps the original type and code
	appErr := New("app", "app error", nil, http.StatusNotFound)
	rewrapped := Wrap(appErr, "ignored", "new message", http.StatusBadRequest)

	if rewrapped.Type != "app" {
		t.Errorf("Wrap() did not preserve original AppError type: got %s, want %s",
			rewrapped.Type, appErr.Type)
	}

	if rewrapped.Message != "new message" {
		t.Errorf("Wrap() did not update message: got %s, want %s",
			rewrapped.Message, "new message")
	}

	if rewrapped.Code != appErr.Code {
		t.Errorf("Wrap() did not preserve original status code: got %d, want %d",
			rewrapped.Code, appErr.Code)
	}

	if Wrap(nil, "t", "m", http.StatusBadRequest) != nil {
		t.Errorf("Wrap(nil) should return nil")
	}
}

func TestErrorTypeChecks(t *testing.T) {
	err := RedisUnavailable(fmt.Errorf("dial refused"))

	if !Is(err, ErrTypeRedis) {
		t.Errorf("Is() did not match redis error type")
	}
	if Is(err, ErrTypeLauncher) {
		t.Errorf("Is() matched wrong error type")
	}
	if GetCode(err) != http.StatusServiceUnavailable {
		t.Errorf("GetCode() = %d, want %d", GetCode(err), http.StatusServiceUnavailable)
	}
	if GetType(fmt.Errorf("plain")) != "unknown" {
		t.Errorf("GetType() on a foreign error should be unknown")
	}
}

func TestRootCause(t *testing.T) {
	cause := fmt.Errorf("root")
	err := SessionStoreFailed("hset", RedisCommandFailed("hset", cause))

	if RootCause(err) != cause {
		t.Errorf("RootCause() = %v, want %v", RootCause(err), cause)
	}
}

func TestJoinErrors(t *testing.T) {
	if JoinErrors(nil, nil) != nil {
		t.Errorf("JoinErrors() of nils should be nil")
	}

	single := fmt.Errorf("only")
	if JoinErrors(nil, single) != single {
		t.Errorf("JoinErrors() with one error should return it unchanged")
	}

	joined := JoinErrors(fmt.Errorf("a"), fmt.Errorf("b"))
	if joined == nil || !Is(joined, ErrTypeInternal) {
		t.Errorf("JoinErrors() with two errors should produce an internal error, got %v", joined)
	}
}
