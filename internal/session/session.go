// Package session keeps one page and its controllers per browser session.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/JustJay7/case-lookup/internal/form"
	"github.com/JustJay7/case-lookup/internal/history"
	"github.com/JustJay7/case-lookup/internal/lookup"
	"github.com/JustJay7/case-lookup/internal/render"
	"github.com/JustJay7/case-lookup/internal/storage"
	"github.com/JustJay7/case-lookup/internal/ui"
	"github.com/JustJay7/case-lookup/pkg/logger"
)

// CookieName is the cookie carrying the session ID.
const CookieName = "case_lookup_session"

// Session is the state of one user's page.
type Session struct {
	ID         string
	Page       *render.Page
	Controller *ui.Controller
	Modals     *ui.Modals
	Events     *ui.Dispatcher
	Store      storage.Store
}

// Config describes how sessions are built.
type Config struct {
	Client       lookup.Client
	Backend      storage.Store
	Builder      *form.Builder
	HistoryLimit int
	TTL          time.Duration
	// SearchTimeout bounds each search of a session.
	SearchTimeout time.Duration
	// Journal returns the query journal of a session; it may be nil.
	Journal func(sessionID string) ui.Journal
	Logger  *logger.Logger
}

// Manager creates and looks up sessions. Sessions idle for longer than the
// TTL are dropped from memory; their durable preferences and history stay
// in the storage backend under the session's namespace.
type Manager struct {
	cfg      Config
	sessions *gocache.Cache

	mu sync.Mutex
}

func NewManager(cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Builder == nil {
		cfg.Builder = form.NewBuilder(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		sessions: gocache.New(cfg.TTL, cfg.TTL/2),
	}
}

// Get returns the live session with id.
func (m *Manager) Get(id string) (*Session, bool) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// Ensure returns the session for id, creating it when id is not a live
// session. A malformed id is replaced by a fresh one. created reports
// whether a new session was built.
func (m *Manager) Ensure(ctx context.Context, id string) (s *Session, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.Get(id); ok {
		m.sessions.SetDefault(id, s)
		return s, false
	}

	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	s = m.build(ctx, id)
	m.sessions.SetDefault(id, s)
	m.cfg.Logger.Debug("Session created", "session_id", id)
	return s, true
}

func (m *Manager) build(ctx context.Context, id string) *Session {
	store := storage.WithNamespace(m.cfg.Backend, "session:"+id)
	page := render.NewPage()

	var journal ui.Journal
	if m.cfg.Journal != nil {
		journal = m.cfg.Journal(id)
	}

	ctrl := ui.NewController(ui.Deps{
		Client:  m.cfg.Client,
		Builder: m.cfg.Builder,
		Page:    page,
		History: history.NewStore(store, m.cfg.HistoryLimit, m.cfg.Logger),
		Prefs:   store,
		Journal: journal,
		Logger:  m.cfg.Logger.With("session_id", id),

		SearchTimeout: m.cfg.SearchTimeout,
	})
	ctrl.Init(ctx)

	modals := ui.NewModals(page)
	return &Session{
		ID:         id,
		Page:       page,
		Controller: ctrl,
		Modals:     modals,
		Events:     ui.Wire(ctrl, modals),
		Store:      store,
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	return m.sessions.ItemCount()
}
