package event

import (
	"encoding/json"
	"fmt"

	"github.com/pharmacy/backend/internal/domain/shared"
)

// Serializer converts domain events to wire payloads
type Serializer interface {
	Serialize(event shared.DomainEvent) ([]byte, error)
}

// JSONSerializer serializes events as JSON. Concrete event structs embed
// BaseDomainEvent and carry their own denormalized fields, so plain
// marshaling of the concrete type produces the full payload.
type JSONSerializer struct{}

// NewJSONSerializer creates a new JSON serializer
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

// Serialize marshals the event to JSON
func (s *JSONSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize event %s: %w", event.EventType(), err)
	}
	return data, nil
}
