package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message kinds carried on the sync queue. Messages are intentionally thin:
// they carry the record date, and consumers fetch current state from the
// local database, so a stale message can never overwrite a newer save.
const (
	KindRecordSync   = "record_sync"
	KindRecordDelete = "record_delete"
)

// SyncMessage asks a worker to reconcile one day's record with the remote
// spreadsheet. For KindRecordSync the worker pushes the current row; for
// KindRecordDelete it removes the remote row.
type SyncMessage struct {
	MessageID string    `json:"message_id"`
	Kind      string    `json:"kind"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(date string) *SyncMessage {
	return newMessage(KindRecordSync, date)
}

func NewRecordDeleteMessage(date string) *SyncMessage {
	return newMessage(KindRecordDelete, date)
}

func newMessage(kind, date string) *SyncMessage {
	return &SyncMessage{
		MessageID: uuid.NewString(),
		Kind:      kind,
		Date:      date,
		Timestamp: time.Now(),
	}
}

func (m *SyncMessage) Validate() error {
	if m.Kind != KindRecordSync && m.Kind != KindRecordDelete {
		return fmt.Errorf("unknown message kind %q", m.Kind)
	}
	if m.Date == "" {
		return fmt.Errorf("message %s has no date", m.MessageID)
	}
	return nil
}

func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
