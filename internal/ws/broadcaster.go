package ws

import (
	"encoding/json"
	"time"
)

const (
	topicPrefix = "ledger:"

	ScopeBorrowers = "borrowers"
	ScopeLoans     = "loans"
	ScopeSummary   = "summary"
)

// Broadcaster implements the model's EventSink: every successful
// mutation is pushed to subscribers of the mutated scope, and any loan
// or borrower change also invalidates the summary scope.
type Broadcaster struct {
	hub *Hub
	now func() time.Time
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{
		hub: hub,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (b *Broadcaster) LedgerChanged(scope, event string) {
	payload, _ := json.Marshal(map[string]any{
		"event": event,
		"scope": scope,
		"at":    b.now().Format(time.RFC3339),
	})
	b.hub.Publish(topicPrefix+scope, payload)

	if scope != ScopeSummary {
		summaryPayload, _ := json.Marshal(map[string]any{
			"event": "summary_invalidated",
			"scope": ScopeSummary,
			"at":    b.now().Format(time.RFC3339),
		})
		b.hub.Publish(topicPrefix+ScopeSummary, summaryPayload)
	}
}
