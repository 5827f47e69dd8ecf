package collab

import (
	"context"
	"sync"
)

// Channel carries presence messages between collaborators of a project.
type Channel interface {
	Publish(ctx context.Context, msg Message) error
	// Subscribe delivers every message published for projectID until the
	// returned cancel func is called.
	Subscribe(ctx context.Context, projectID string) (<-chan Message, func(), error)
}

// ============================================================
// In-process hub
// ============================================================

// MemoryHub fans messages out to subscribers in the same process. Slow
// subscribers lose messages rather than block publishers.
type MemoryHub struct {
	mu     sync.RWMutex
	buffer int
	subs   map[string]map[chan Message]struct{}
}

func NewMemoryHub(buffer int) *MemoryHub {
	if buffer <= 0 {
		buffer = 64
	}
	return &MemoryHub{buffer: buffer, subs: make(map[string]map[chan Message]struct{})}
}

func (h *MemoryHub) Publish(_ context.Context, msg Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[msg.ProjectID] {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

func (h *MemoryHub) Subscribe(_ context.Context, projectID string) (<-chan Message, func(), error) {
	ch := make(chan Message, h.buffer)

	h.mu.Lock()
	if h.subs[projectID] == nil {
		h.subs[projectID] = make(map[chan Message]struct{})
	}
	h.subs[projectID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[projectID], ch)
			if len(h.subs[projectID]) == 0 {
				delete(h.subs, projectID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}
