package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floorplan-sketcher/internal/sketcher/collab"
	"floorplan-sketcher/internal/sketcher/machine"
	"floorplan-sketcher/internal/sketcher/models"
)

type memStore struct {
	mu       sync.Mutex
	projects map[string]models.Project
	messages []string
}

func newMemStore(projects ...models.Project) *memStore {
	s := &memStore{projects: map[string]models.Project{}}
	for _, p := range projects {
		s.projects[p.ID] = p
	}
	return s
}

func (s *memStore) Load(_ context.Context, id string) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return models.Project{}, assert.AnError
	}
	return p, nil
}

func (s *memStore) Save(_ context.Context, p models.Project, message string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
	s.messages = append(s.messages, message)
	return len(s.messages), nil
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ctx, DefaultConfig(), newMemStore(joinedProject()), collab.NewMemoryHub(16), collab.BridgeOptions{}, nil)

	info, err := m.Open(ctx, "p1", collab.Identity{UserID: "alice", UserName: "Alice"}, false)
	require.NoError(t, err)
	assert.NotEmpty(t, info.Token)
	assert.Equal(t, 1, m.Len())

	e, err := m.Resolve(info.Token)
	require.NoError(t, err)
	assert.Len(t, e.Project().Levels[0].Walls, 2)

	require.NoError(t, m.Close(ctx, info.Token))
	_, err = m.Resolve(info.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(ctx, info.Token), ErrSessionNotFound)
}

func TestManagerUnknownProject(t *testing.T) {
	m := NewManager(context.Background(), DefaultConfig(), newMemStore(), nil, collab.BridgeOptions{}, nil)
	_, err := m.Open(context.Background(), "missing", collab.Identity{}, false)
	assert.Error(t, err)
	assert.Zero(t, m.Len())
}

func TestSessionsShareCursors(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ctx, DefaultConfig(), newMemStore(joinedProject()), collab.NewMemoryHub(16), collab.BridgeOptions{}, nil)
	t.Cleanup(func() { m.CloseAll(ctx) })

	a, err := m.Open(ctx, "p1", collab.Identity{UserID: "alice", UserName: "Alice"}, false)
	require.NoError(t, err)
	b, err := m.Open(ctx, "p1", collab.Identity{UserID: "bob", UserName: "Bob"}, true)
	require.NoError(t, err)

	alice, _ := m.Resolve(a.Token)
	bob, _ := m.Resolve(b.Token)

	_, err = alice.Dispatch(machine.PointerMove{Screen: models.Point{X: 40, Y: 60}})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		c, ok := bob.Presence().Cursors["alice"]
		return ok && c.X == 40 && c.Y == 60
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Close(ctx, a.Token))
	assert.Eventually(t, func() bool {
		return len(bob.Presence().Cursors) == 0
	}, time.Second, 5*time.Millisecond)
}
