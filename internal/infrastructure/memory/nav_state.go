package memory

import (
	"context"
	"sync"

	"github.com/baechuer/event-hub/internal/application/navigation"
)

// NavStates keeps router state per browser context in process memory.
type NavStates struct {
	mu     sync.Mutex
	states map[string]navigation.State
}

func NewNavStates() *NavStates {
	return &NavStates{states: make(map[string]navigation.State)}
}

func (n *NavStates) For(contextID string) navigation.StateStore {
	return &navState{n: n, cid: contextID}
}

type navState struct {
	n   *NavStates
	cid string
}

func (s *navState) Load(ctx context.Context) (navigation.State, error) {
	s.n.mu.Lock()
	defer s.n.mu.Unlock()
	return copyState(s.n.states[s.cid]), nil
}

func (s *navState) Save(ctx context.Context, st navigation.State) error {
	s.n.mu.Lock()
	defer s.n.mu.Unlock()
	s.n.states[s.cid] = copyState(st)
	return nil
}

func copyState(st navigation.State) navigation.State {
	st.History = append([]navigation.RouteName(nil), st.History...)
	return st
}
