package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"floorplan-sketcher/internal/sketcher/collab"
	"floorplan-sketcher/internal/sketcher/models"
)

var ErrSessionNotFound = eris.New("session: not found")

// ProjectStore loads and saves project snapshots.
type ProjectStore interface {
	Saver
	Load(ctx context.Context, id string) (models.Project, error)
}

// ============================================================
// Session Manager
// ============================================================

// Manager issues session tokens and owns the editors behind them.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry // token -> session

	// base outlives individual requests; presence loops run under it.
	base       context.Context
	cfg        Config
	store      ProjectStore
	channel    collab.Channel
	bridgeOpts collab.BridgeOptions
	logger     *zap.Logger
}

type entry struct {
	editor *Editor
	user   collab.Identity
}

type Info struct {
	Token     string `json:"token"`
	ProjectID string `json:"projectId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	ReadOnly  bool   `json:"readOnly"`
}

func NewManager(base context.Context, cfg Config, store ProjectStore, channel collab.Channel, bridgeOpts collab.BridgeOptions, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.L()
	}
	bridgeOpts.Logger = logger
	return &Manager{
		sessions:   make(map[string]*entry),
		base:       base,
		cfg:        cfg,
		store:      store,
		channel:    channel,
		bridgeOpts: bridgeOpts,
		logger:     logger,
	}
}

// Open loads the project and starts an editor joined to its presence
// channel.
func (m *Manager) Open(ctx context.Context, projectID string, user collab.Identity, readOnly bool) (Info, error) {
	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	if user.UserName == "" {
		user.UserName = "Guest"
	}

	project, err := m.store.Load(ctx, projectID)
	if err != nil {
		return Info{}, err
	}

	var bridge *collab.Bridge
	if m.channel != nil {
		bridge = collab.NewBridge(m.channel, projectID, user, m.bridgeOpts)
		if err := bridge.Start(m.base); err != nil {
			return Info{}, err
		}
	}

	editor := NewEditor(project, m.cfg, Deps{
		Store:    m.store,
		Presence: bridge,
		Logger:   m.logger.With(zap.String("user_id", user.UserID)),
	}, readOnly)

	token := uuid.NewString()
	m.mu.Lock()
	m.sessions[token] = &entry{editor: editor, user: user}
	m.mu.Unlock()

	m.logger.Info("session opened",
		zap.String("project_id", projectID),
		zap.String("user_id", user.UserID),
		zap.Bool("read_only", readOnly),
	)
	return Info{Token: token, ProjectID: projectID, UserID: user.UserID, UserName: user.UserName, ReadOnly: readOnly}, nil
}

func (m *Manager) Resolve(token string) (*Editor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[token]
	if !ok {
		return nil, eris.Wrapf(ErrSessionNotFound, "token %s", token)
	}
	return e.editor, nil
}

// Close ends a session and evicts its presence from everyone else.
func (m *Manager) Close(ctx context.Context, token string) error {
	m.mu.Lock()
	e, ok := m.sessions[token]
	delete(m.sessions, token)
	m.mu.Unlock()

	if !ok {
		return eris.Wrapf(ErrSessionNotFound, "token %s", token)
	}
	e.editor.Close(ctx)
	m.logger.Info("session closed", zap.String("user_id", e.user.UserID))
	return nil
}

func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	tokens := make([]string, 0, len(m.sessions))
	for t := range m.sessions {
		tokens = append(tokens, t)
	}
	m.mu.Unlock()

	for _, t := range tokens {
		_ = m.Close(ctx, t)
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
