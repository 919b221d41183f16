package amqp

import (
	"encoding/json"
	"time"
)

// DocumentSavedMessage announces that a new revision of the budget document
// has been written to the store. Consumers re-read the document themselves;
// the message carries no payload.
type DocumentSavedMessage struct {
	Revision  int64     `json:"revision"`
	UpdatedAt time.Time `json:"updatedAt"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDocumentSavedMessage creates a new save notification
func NewDocumentSavedMessage(revision int64, updatedAt time.Time) *DocumentSavedMessage {
	return &DocumentSavedMessage{
		Revision:  revision,
		UpdatedAt: updatedAt,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DocumentSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func DocumentSavedMessageFromJSON(data []byte) (*DocumentSavedMessage, error) {
	var msg DocumentSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
