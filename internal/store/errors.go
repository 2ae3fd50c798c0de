package store

import "fmt"

// StateError is the error taxonomy returned by StateActor operations
// (td/src/state/messages.rs's StateError).
type StateError struct {
	Kind    string
	Message string
}

func (e *StateError) Error() string {
	switch e.Kind {
	case "not_found":
		return fmt.Sprintf("Record not found: %s", e.Message)
	case "store_error":
		return fmt.Sprintf("Store error: %s", e.Message)
	case "deserialization_error":
		return fmt.Sprintf("Deserialization error: %s", e.Message)
	case "channel_error":
		return "Channel error"
	default:
		return e.Message
	}
}

// NotFound builds a "record not found" StateError for id.
func NotFound(id string) *StateError {
	return &StateError{Kind: "not_found", Message: id}
}

// StoreErrorf builds a "store error" StateError.
func StoreErrorf(format string, args ...any) *StateError {
	return &StateError{Kind: "store_error", Message: fmt.Sprintf(format, args...)}
}

// DeserializationErrorf builds a "deserialization error" StateError.
func DeserializationErrorf(format string, args ...any) *StateError {
	return &StateError{Kind: "deserialization_error", Message: fmt.Sprintf(format, args...)}
}

// ErrChannel is returned when a command could not be delivered to or
// replied from the StateActor (the actor is shut down, or the reply
// channel was dropped).
var ErrChannel = &StateError{Kind: "channel_error"}

// invalidTransitionError reports a rejected controlled transition, e.g.
// "cannot resume execution 0a1b2c-exec-foo: status is Running, expected
// Paused or Blocked".
func invalidTransitionError(id, op, got, want string) *StateError {
	return StoreErrorf("cannot %s %s: status is %s, expected %s", op, id, got, want)
}
