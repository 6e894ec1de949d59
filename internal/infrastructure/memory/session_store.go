package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/event-hub/internal/application/auth"
	"github.com/baechuer/event-hub/internal/domain"
)

// SessionStore keeps sessions in process memory, one slot per browser context.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
		now:      time.Now,
	}
}

func (s *SessionStore) For(contextID string) auth.SessionStore {
	return &contextSession{store: s, cid: contextID}
}

// Len reports how many contexts currently hold a session.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type contextSession struct {
	store *SessionStore
	cid   string
}

func (cs *contextSession) Load(ctx context.Context) (*domain.Session, error) {
	cs.store.mu.Lock()
	defer cs.store.mu.Unlock()

	sess, ok := cs.store.sessions[cs.cid]
	if !ok {
		return nil, nil
	}
	if sess.Expired(cs.store.now()) {
		delete(cs.store.sessions, cs.cid)
		return nil, nil
	}
	return &sess, nil
}

func (cs *contextSession) Save(ctx context.Context, sess domain.Session) error {
	cs.store.mu.Lock()
	defer cs.store.mu.Unlock()
	cs.store.sessions[cs.cid] = sess
	return nil
}

func (cs *contextSession) Clear(ctx context.Context) error {
	cs.store.mu.Lock()
	defer cs.store.mu.Unlock()
	delete(cs.store.sessions, cs.cid)
	return nil
}
