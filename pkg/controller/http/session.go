package http

import (
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

const defaultSessionIdleTimeout = 2 * time.Hour

var errSessionNotFound = goerr.New("evaluation session not found")

type sessionEntry struct {
	mu       sync.Mutex
	orgID    string
	session  *model.EvaluationSession
	lastUsed time.Time
}

// sessionStore keeps open evaluation dialogs. Sessions are never persisted;
// idle ones are dropped when new sessions are added.
type sessionStore struct {
	mu          sync.Mutex
	entries     map[string]*sessionEntry
	idleTimeout time.Duration
	now         func() time.Time
}

func newSessionStore(idleTimeout time.Duration) *sessionStore {
	return &sessionStore{
		entries:     make(map[string]*sessionEntry),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

func (s *sessionStore) add(orgID string, session *model.EvaluationSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.idleTimeout > 0 {
		for id, entry := range s.entries {
			if now.Sub(entry.lastUsed) > s.idleTimeout {
				delete(s.entries, id)
			}
		}
	}

	s.entries[session.ID] = &sessionEntry{
		orgID:    orgID,
		session:  session,
		lastUsed: now,
	}
}

// with runs fn while holding the lock of the session. A session of another
// organization is reported as not found. Closed sessions are removed after fn.
func (s *sessionStore) with(id, orgID string, fn func(session *model.EvaluationSession) error) error {
	s.mu.Lock()
	entry, ok := s.entries[id]
	s.mu.Unlock()
	if !ok || entry.orgID != orgID {
		return goerr.Wrap(errSessionNotFound, "no open evaluation session", goerr.V("session_id", id))
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	err := fn(entry.session)

	s.mu.Lock()
	entry.lastUsed = s.now()
	if entry.session.IsClosed() {
		delete(s.entries, id)
	}
	s.mu.Unlock()

	return err
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
