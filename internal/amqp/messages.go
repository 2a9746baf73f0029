package amqp

import (
	"encoding/json"
	"time"
)

// LedgerRefreshMessage tells workers that the transaction set changed.
// It carries only the dataset version and the batch size; consumers fetch
// the ledger from storage themselves.
type LedgerRefreshMessage struct {
	Version   int64     `json:"version"`
	Imported  int       `json:"imported"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerRefreshMessage(version int64, imported int) *LedgerRefreshMessage {
	return &LedgerRefreshMessage{
		Version:   version,
		Imported:  imported,
		Timestamp: time.Now(),
	}
}

func (m *LedgerRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerRefreshMessageFromJSON(data []byte) (*LedgerRefreshMessage, error) {
	var msg LedgerRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
