package types

import (
	"time"

	"github.com/google/uuid"
)

// NewAutomationID generates a UUIDv7 automation identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewAutomationID() AutomationID {
	return AutomationID(uuid.Must(uuid.NewV7()).String())
}

// NewEvaluationID generates a UUIDv7 evaluation identifier.
// Time-ordered IDs ensure sequential inserts cluster in B-tree pages.
func NewEvaluationID() EvaluationID {
	return EvaluationID(uuid.Must(uuid.NewV7()).String())
}

// ParseAutomationID validates and converts a string to AutomationID.
// Rejects malformed UUIDs to prevent invalid IDs from reaching the store.
func ParseAutomationID(s string) (AutomationID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return AutomationID(s), nil
}

// EvaluationIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func EvaluationIDTime(id EvaluationID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
