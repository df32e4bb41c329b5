package amqp

import (
	"encoding/json"
	"time"
)

// Entity names the kind of record a change event refers to.
type Entity string

const (
	EntityBudget      Entity = "budget"
	EntityCategory    Entity = "category"
	EntityTransaction Entity = "transaction"
)

// Op names what happened to the entity.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// ChangeMessage announces that a record changed. It carries only
// identifiers; consumers reload whatever state they need.
type ChangeMessage struct {
	Entity    Entity    `json:"entity"`
	Op        Op        `json:"op"`
	ID        string    `json:"id"`
	BudgetID  string    `json:"budget_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change message stamped with the current time.
func NewChangeMessage(entity Entity, op Op, id, budgetID string) *ChangeMessage {
	return &ChangeMessage{
		Entity:    entity,
		Op:        op,
		ID:        id,
		BudgetID:  budgetID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
