package collab

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"floorplan-sketcher/internal/sketcher/models"
)

var ErrAlreadyStarted = eris.New("collab: bridge already started")

type Identity struct {
	UserID   string
	UserName string
}

type BridgeOptions struct {
	// CursorRate caps outbound cursor messages per second; 0 means no cap.
	CursorRate  float64
	CursorBurst int
	// Outbox bounds queued outbound messages; extra ones are dropped.
	Outbox int
	Logger *zap.Logger
}

// ============================================================
// Bridge
// ============================================================

// Bridge connects one editor session to a project's presence channel.
// Outbound sends are fire-and-forget; inbound messages only touch the cache.
type Bridge struct {
	channel   Channel
	projectID string
	self      Identity
	cache     *Cache
	limiter   *rate.Limiter
	outbox    chan Message
	logger    *zap.Logger

	mu   sync.Mutex
	stop func()
}

func NewBridge(channel Channel, projectID string, self Identity, opts BridgeOptions) *Bridge {
	limit := rate.Inf
	if opts.CursorRate > 0 {
		limit = rate.Limit(opts.CursorRate)
	}
	if opts.CursorBurst <= 0 {
		opts.CursorBurst = 1
	}
	if opts.Outbox <= 0 {
		opts.Outbox = 64
	}
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}

	return &Bridge{
		channel:   channel,
		projectID: projectID,
		self:      self,
		cache:     NewCache(),
		limiter:   rate.NewLimiter(limit, opts.CursorBurst),
		outbox:    make(chan Message, opts.Outbox),
		logger:    opts.Logger.With(zap.String("project_id", projectID), zap.String("user_id", self.UserID)),
	}
}

func (b *Bridge) Self() Identity { return b.self }

// Start subscribes to the project channel and runs the receive and send
// loops until ctx ends or Close is called.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		return ErrAlreadyStarted
	}

	msgs, unsubscribe, err := b.channel.Subscribe(ctx, b.projectID)
	if err != nil {
		return eris.Wrap(err, "start presence bridge")
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b.receive(gctx, msgs)
		return nil
	})
	g.Go(func() error {
		b.send(gctx)
		return nil
	})

	b.stop = func() {
		cancel()
		unsubscribe()
		_ = g.Wait()
	}
	return nil
}

func (b *Bridge) receive(ctx context.Context, msgs <-chan Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if msg.UserID == b.self.UserID || msg.ProjectID != b.projectID {
				continue
			}
			b.cache.Apply(msg)
		}
	}
}

func (b *Bridge) send(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.outbox:
			if err := b.channel.Publish(ctx, msg); err != nil {
				b.logger.Debug("presence publish failed", zap.String("kind", string(msg.Kind)), zap.Error(err))
			}
		}
	}
}

func (b *Bridge) enqueue(msg Message) {
	select {
	case b.outbox <- msg:
	default:
		b.logger.Debug("presence outbox full, dropping", zap.String("kind", string(msg.Kind)))
	}
}

// CursorMoved queues the local cursor position in model space.
func (b *Bridge) CursorMoved(p models.Point) {
	if !b.limiter.Allow() {
		return
	}
	b.enqueue(Message{
		Kind:      KindCursor,
		ProjectID: b.projectID,
		UserID:    b.self.UserID,
		UserName:  b.self.UserName,
		X:         p.X,
		Y:         p.Y,
	})
}

// SelectionChanged queues the local selection; nil clears it.
func (b *Bridge) SelectionChanged(ref *models.ObjectRef) {
	msg := Message{
		Kind:      KindSelection,
		ProjectID: b.projectID,
		UserID:    b.self.UserID,
		UserName:  b.self.UserName,
	}
	if ref != nil {
		msg.ObjectID = ref.ID
		msg.ObjectType = ref.Type
		msg.LevelIndex = ref.LevelIndex
	}
	b.enqueue(msg)
}

// Snapshot never includes the local user, whatever the cache holds.
func (b *Bridge) Snapshot() Presence {
	return b.cache.Snapshot(b.self.UserID)
}

// Apply feeds an inbound message directly, bypassing the channel.
func (b *Bridge) Apply(msg Message) {
	b.cache.Apply(msg)
}

func (b *Bridge) Evict(userID string) {
	b.cache.Evict(userID)
}

// Leave announces the disconnect and stops the loops.
func (b *Bridge) Leave(ctx context.Context) {
	err := b.channel.Publish(ctx, Message{Kind: KindLeave, ProjectID: b.projectID, UserID: b.self.UserID})
	if err != nil {
		b.logger.Debug("presence leave failed", zap.Error(err))
	}
	b.Close()
}

func (b *Bridge) Close() {
	b.mu.Lock()
	stop := b.stop
	b.stop = nil
	b.mu.Unlock()

	if stop != nil {
		stop()
	}
}
