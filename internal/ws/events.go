package ws

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Event types pushed to dashboard clients. The payloads originate from
// pg_notify messages emitted by the store after a governance transaction
// commits, so a client never sees an event for a change that rolled back.
const (
	EventSnapshotPromoted   = "snapshot_promoted"
	EventSnapshotRolledBack = "snapshot_rolled_back"
	EventKillSwitchUpdated  = "kill_switch_updated"
)

// Event is the structured message sent to WebSocket clients.
type Event struct {
	Type        string          `json:"type"`
	ID          uint64          `json:"id"`
	WorkspaceID string          `json:"-"`
	Data        json.RawMessage `json:"data"`
	Time        time.Time       `json:"time"`
}

// EventSequence tracks monotonic event IDs per workspace so clients can
// detect missed events across reconnects.
type EventSequence struct {
	mu       sync.Mutex
	counters map[string]*atomic.Uint64
}

// NewEventSequence creates a new EventSequence.
func NewEventSequence() *EventSequence {
	return &EventSequence{
		counters: make(map[string]*atomic.Uint64),
	}
}

// Next returns the next sequence number for a workspace.
func (es *EventSequence) Next(workspaceID string) uint64 {
	es.mu.Lock()
	counter, ok := es.counters[workspaceID]
	if !ok {
		counter = &atomic.Uint64{}
		es.counters[workspaceID] = counter
	}
	es.mu.Unlock()

	return counter.Add(1)
}
