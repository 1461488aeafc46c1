package ledger

import (
	"encoding/json"
	"time"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TrashEntityType tags what kind of graph a trash entry holds.
type TrashEntityType string

const (
	TrashCompany     TrashEntityType = "company"
	TrashProject     TrashEntityType = "project"
	TrashTransaction TrashEntityType = "transaction"
)

// IsValid checks if the trash entity type is valid
func (t TrashEntityType) IsValid() bool {
	switch t {
	case TrashCompany, TrashProject, TrashTransaction:
		return true
	}
	return false
}

// DeletedGraph is the full cascade captured by one delete: the root entity
// plus everything removed with it. Exactly one of Company, Project or
// Transaction is set, matching the entry's type tag.
type DeletedGraph struct {
	Company      *Company            `json:"company,omitempty"`
	Project      *Project            `json:"project,omitempty"`
	Transaction  *Transaction        `json:"transaction,omitempty"`
	Projects     []Project           `json:"projects,omitempty"`
	Transactions []Transaction       `json:"transactions,omitempty"`
	Allocations  []PaymentAllocation `json:"allocations,omitempty"`
}

// TrashEntry is one soft-deleted graph awaiting restore or purge.
type TrashEntry struct {
	ID         uuid.UUID
	EntityType TrashEntityType
	Payload    []byte
	DeletedAt  time.Time
}

// NewTrashEntry serializes the deleted graph into a restorable snapshot.
func NewTrashEntry(entityType TrashEntityType, graph DeletedGraph) (*TrashEntry, error) {
	if !entityType.IsValid() {
		return nil, shared.NewValidationError("trash entity type must be company, project or transaction")
	}
	payload, err := json.Marshal(graph)
	if err != nil {
		return nil, shared.NewValidationError("failed to serialize deleted entity: " + err.Error())
	}
	return &TrashEntry{
		ID:         uuid.New(),
		EntityType: entityType,
		Payload:    payload,
		DeletedAt:  time.Now(),
	}, nil
}

// Graph deserializes the snapshot back into the deleted entity graph.
func (e *TrashEntry) Graph() (DeletedGraph, error) {
	var graph DeletedGraph
	if err := json.Unmarshal(e.Payload, &graph); err != nil {
		return DeletedGraph{}, shared.NewIntegrityError("trash entry payload is not restorable: " + err.Error())
	}
	return graph, nil
}
