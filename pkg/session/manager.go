package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/portscope/internal/logging"
	"github.com/aretw0/portscope/pkg/domain"
	"github.com/aretw0/portscope/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a crashed replica can hold a session lock.
const DefaultLockTTL = 30 * time.Second

// Inspector is what viewer sessions need from the inspection core.
// *portscope.Inspector satisfies it.
type Inspector interface {
	ListPorts(ctx context.Context, node string) ([]string, error)
	Extract(ctx context.Context, node, port string) (*domain.ExtractionResult, error)
	CreateMarkersFromCells(ctx context.Context, result *domain.ExtractionResult, cells []domain.CellRef) ([]string, error)
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns viewer sessions: which port a viewer shows and the data it last read.
// Operations on one session are serialized; unused locks are reference counted away.
type Manager struct {
	store     ports.SessionStore
	inspector Inspector

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	newID   func() string
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIDGenerator replaces the random UUID session IDs.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// NewManager creates a Manager persisting sessions in store.
func NewManager(store ports.SessionStore, inspector Inspector, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		inspector: inspector,
		locks:     make(map[string]*lockEntry),
		lockTTL:   DefaultLockTTL,
		logger:    logging.NewNop(),
		newID:     uuid.NewString,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// update loads a session, applies fn and saves it, all under the session lock.
func (m *Manager) update(ctx context.Context, sessionID string, fn func(context.Context, *domain.Session) error) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := fn(ctx, s); err != nil {
			return err
		}
		s.UpdatedAt = m.now()
		if err := m.store.Save(ctx, s); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		session = s
		return nil
	})
	return session, err
}

// Create opens a viewer session on a graph node and returns it with its port list.
func (m *Manager) Create(ctx context.Context, node string) (*domain.Session, []string, error) {
	portNames, err := m.inspector.ListPorts(ctx, node)
	if err != nil {
		return nil, nil, err
	}

	session := domain.NewSession(m.newID(), node)
	session.UpdatedAt = m.now()
	err = m.WithLock(ctx, session.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, session)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to save session: %w", err)
	}
	m.logger.Info("viewer session created", "session_id", session.ID, "node", node, "ports", len(portNames))
	return session, portNames, nil
}

// Get returns a session.
func (m *Manager) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		session, err = m.store.Load(ctx, sessionID)
		return err
	})
	return session, err
}

// Ports lists the ports of the session's node, read live.
func (m *Manager) Ports(ctx context.Context, sessionID string) ([]string, error) {
	session, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return m.inspector.ListPorts(ctx, session.Node)
}

// SelectPort points the session at a port and extracts it. A port without data
// leaves the session with no result.
func (m *Manager) SelectPort(ctx context.Context, sessionID, port string) (*domain.Session, error) {
	return m.update(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		result, err := m.inspector.Extract(ctx, s.Node, port)
		if err != nil {
			return err
		}
		s.Port = port
		s.Result = result
		return nil
	})
}

// Refresh re-extracts the selected port.
func (m *Manager) Refresh(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.update(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		if s.Port == "" {
			return domain.ErrNoSelection
		}
		result, err := m.inspector.Extract(ctx, s.Node, s.Port)
		if err != nil {
			return err
		}
		s.Result = result
		return nil
	})
}

// Row returns the cells of one table row, for scrolling a viewer to it.
func (m *Manager) Row(ctx context.Context, sessionID string, row int) ([]domain.Cell, error) {
	session, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Result == nil {
		return nil, domain.ErrNoSelection
	}
	if row < 0 || row >= session.Result.Rows() {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", domain.ErrRowOutOfRange, row, session.Result.Rows())
	}
	return session.Result.Row(row), nil
}

// CreateMarkers places markers for the given cells of the session's current data.
func (m *Manager) CreateMarkers(ctx context.Context, sessionID string, cells []domain.CellRef) ([]string, error) {
	session, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Result == nil {
		return nil, domain.ErrNoSelection
	}
	return m.inspector.CreateMarkersFromCells(ctx, session.Result, cells)
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if _, err := m.store.Load(ctx, sessionID); err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return err
			}
			return fmt.Errorf("failed to check session: %w", err)
		}
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}
