package session

import (
	"sync"
	"time"

	"certdesk/apperr"
	"certdesk/controllers/chatController"
	"certdesk/controllers/formController"
	"certdesk/controllers/previewRenderer"
	"certdesk/logger"
	"certdesk/models"

	"github.com/google/uuid"
)

// Backends are the remote services every workspace talks to
type Backends struct {
	Appreciation formController.AppreciationGenerator
	Issuer       formController.CertificateIssuer
	Verifier     chatController.Verifier
}

// Workspace is one page: a certificate form, a verification chat and the certificate on preview.
type Workspace struct {
	ID        string
	CreatedAt time.Time
	Form      *formController.Controller
	Chat      *chatController.Controller

	mu       sync.Mutex
	current  *models.Certificate
	lastSeen time.Time
}

// Current returns a copy of the certificate on preview, or nil if none was issued yet.
// It is only ever replaced by a newer issued certificate, never cleared.
func (w *Workspace) Current() *models.Certificate {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return nil
	}
	out := *w.current
	return &out
}

func (w *Workspace) Preview() previewRenderer.Document {
	return previewRenderer.Render(w.Current())
}

func (w *Workspace) LastSeen() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

func (w *Workspace) setCurrent(cert models.Certificate) {
	w.mu.Lock()
	w.current = &cert
	w.mu.Unlock()
}

func (w *Workspace) touch(at time.Time) {
	w.mu.Lock()
	w.lastSeen = at
	w.mu.Unlock()
}

// busy reports whether a submission or a chat message is still in flight
func (w *Workspace) busy() bool {
	return w.Form.State() == formController.StateSubmitting || w.Chat.Sending()
}

// Store is the in-memory workspace registry
type Store struct {
	log      *logger.Logger
	backends Backends
	now      func() time.Time

	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

func NewStore(log *logger.Logger, backends Backends) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		log:        log.With("component", "WorkspaceStore"),
		backends:   backends,
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}
}

// Create opens a fresh workspace
func (s *Store) Create() *Workspace {
	now := s.now()
	w := &Workspace{
		ID:        uuid.NewString(),
		CreatedAt: now,
		lastSeen:  now,
	}
	wsLog := s.log.With("workspace_id", w.ID)
	w.Form = formController.New(wsLog, s.backends.Appreciation, s.backends.Issuer,
		formController.WithOnIssued(w.setCurrent))
	w.Chat = chatController.New(wsLog, s.backends.Verifier)

	s.mu.Lock()
	s.workspaces[w.ID] = w
	s.mu.Unlock()

	s.log.Info("workspace created", "workspace_id", w.ID)
	return w
}

// Get looks a workspace up and marks it as seen
func (s *Store) Get(id string) (*Workspace, error) {
	s.mu.RLock()
	w, ok := s.workspaces[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperr.NotFound("get workspace", id)
	}
	w.touch(s.now())
	return w, nil
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[id]; !ok {
		return false
	}
	delete(s.workspaces, id)
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}

// Evict drops workspaces not seen for longer than idle. Workspaces with a request in flight are kept.
func (s *Store) Evict(idle time.Duration) []string {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for id, w := range s.workspaces {
		if !w.LastSeen().Before(cutoff) || w.busy() {
			continue
		}
		delete(s.workspaces, id)
		evicted = append(evicted, id)
	}
	if len(evicted) > 0 {
		s.log.Info("evicted idle workspaces", "count", len(evicted), "remaining", len(s.workspaces))
	}
	return evicted
}
