// Package memory provides the in-memory transaction journal, used when no
// journal database is configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tapterm/tapterm/internal/ports"
)

type Journal struct {
	mu      sync.RWMutex
	entries []*ports.JournalEntry
}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) Record(ctx context.Context, entry *ports.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	stored := *entry
	j.entries = append(j.entries, &stored)
	return nil
}

func (j *Journal) FindByGatewayID(ctx context.Context, gatewayTransactionID string) (*ports.JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	for _, e := range j.entries {
		if e.GatewayTransactionID == gatewayTransactionID {
			found := *e
			return &found, nil
		}
	}
	return nil, nil
}

func (j *Journal) ListRecent(ctx context.Context, limit int) ([]*ports.JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]*ports.JournalEntry, len(j.entries))
	for i, e := range j.entries {
		copied := *e
		out[i] = &copied
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
