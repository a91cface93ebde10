// Package types provides domain models shared across Automata components.
//
// Zero-dependency design: types.go and errors.go use only the standard library
// so the engine packages (value, provider, conditions) can import them without
// pulling in transport or storage deps. ID utilities in ids.go import uuid but
// are only used by the hosting layer.
package types

import (
	"database/sql"
	"encoding/json"
	"time"
)

// AutomationID represents a UUIDv7 automation identifier.
// String alias enables type safety while maintaining JSON string serialization.
type AutomationID string

// EvaluationID represents a UUIDv7 identifier for one evaluation of an automation.
// UUIDv7 time-ordering keeps the evaluation log clustered by insertion time.
type EvaluationID string

// Payload represents an arbitrary JSON trigger payload.
// json.RawMessage wrapper preserves original bytes so numeric literals keep
// their textual form until the engine decodes them.
type Payload json.RawMessage

// MarshalJSON implements json.Marshaler.
func (p Payload) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	return json.RawMessage(p).MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Payload) UnmarshalJSON(data []byte) error {
	return (*json.RawMessage)(p).UnmarshalJSON(data)
}

// Resource limits enforced by the engine and the hosting layer.
const (
	// MaxDefinitionSize limits an automation definition document.
	// 256KB is far beyond hand-authored conditions but bounds decoder work.
	MaxDefinitionSize = 256 * 1024

	// MaxPayloadSize limits a trigger payload to prevent OOM during evaluation.
	MaxPayloadSize = 1024 * 1024

	// MaxPathDepth bounds object path navigation.
	// 64 segments is deeper than any realistic trigger payload.
	MaxPathDepth = 64

	// MaxVariables limits user-declared variables per data context.
	MaxVariables = 256
)

// Automation is a stored automation definition.
// Definition holds the original JSON document; it is compiled on demand.
type Automation struct {
	ID          AutomationID `db:"automation_id" json:"id"`
	Name        string       `db:"name" json:"name"`
	Description string       `db:"description" json:"description,omitempty"`
	Definition  string       `db:"definition" json:"definition"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`
}

// Evaluation is one logged evaluation of a stored automation.
// Exactly one of Result and ErrorTitle is set.
type Evaluation struct {
	ID           EvaluationID   `db:"evaluation_id" json:"id"`
	AutomationID AutomationID   `db:"automation_id" json:"automationId"`
	Result       sql.NullBool   `db:"result" json:"-"`
	ErrorTitle   sql.NullString `db:"error_title" json:"-"`
	ErrorPath    sql.NullString `db:"error_path" json:"-"`
	ElapsedUs    int64          `db:"elapsed_us" json:"elapsedUs"`
	EvaluatedAt  time.Time      `db:"evaluated_at" json:"evaluatedAt"`
}
