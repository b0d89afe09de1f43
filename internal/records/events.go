package records

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventKind is what happened to an entity.
type EventKind string

const (
	EventCreate EventKind = "create"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
	EventExport EventKind = "export"
	EventImport EventKind = "import"
)

// EntityKind is the kind of document an event refers to.
type EntityKind string

const (
	EntityPatient    EntityKind = "paciente"
	EntitySession    EntityKind = "sessao"
	EntityProcess    EntityKind = "processo"
	EntityConnection EntityKind = "conexao"
)

// Event is one entry of the activity history.
type Event struct {
	ID        string          `json:"id"`
	Kind      EventKind       `json:"tipo"`
	Entity    EntityKind      `json:"entidade"`
	EntityID  string          `json:"entidadeId"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"dados,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
// data is marshaled as-is; a nil data leaves Data empty.
func NewEvent(kind EventKind, entity EntityKind, entityID string, data any) Event {
	ev := Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Entity:    entity,
		EntityID:  entityID,
		Timestamp: timeNow().UTC(),
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			ev.Data = raw
		}
	}
	return ev
}

// Recorder receives an event after each successful change. It is an
// optional dependency: recording is best-effort and never fails the
// operation that triggered it.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// notify is a nil-safe helper used after successful writes.
func notify(ctx context.Context, r Recorder, ev Event) {
	if r == nil {
		return
	}
	r.Record(ctx, ev)
}
