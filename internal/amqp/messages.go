package amqp

import (
	"encoding/json"
	"time"
)

// PaycheckAllocatedMessage announces that a paycheck was recorded and split
// across categories. Consumers fetch the allocation rows by paycheck ID.
type PaycheckAllocatedMessage struct {
	PaycheckID int64     `json:"paycheck_id"`
	Amount     string    `json:"amount"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewPaycheckAllocatedMessage(paycheckID int64, amount string) *PaycheckAllocatedMessage {
	return &PaycheckAllocatedMessage{
		PaycheckID: paycheckID,
		Amount:     amount,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *PaycheckAllocatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PaycheckAllocatedMessageFromJSON creates a message from JSON bytes
func PaycheckAllocatedMessageFromJSON(data []byte) (*PaycheckAllocatedMessage, error) {
	var msg PaycheckAllocatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BalanceUpdatedMessage announces a balance change on an account or debt.
type BalanceUpdatedMessage struct {
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	OldBalance string    `json:"old_balance"`
	NewBalance string    `json:"new_balance"`
	Date       string    `json:"date"`
	Timestamp  time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *BalanceUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BalanceUpdatedMessageFromJSON creates a message from JSON bytes
func BalanceUpdatedMessageFromJSON(data []byte) (*BalanceUpdatedMessage, error) {
	var msg BalanceUpdatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
