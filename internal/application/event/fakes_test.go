package event

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/baechuer/event-hub/internal/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

// store is a tiny in-memory backend shared by the repo, seats and registration fakes.
type store struct {
	mu     sync.Mutex
	events []domain.Event
	regs   []domain.Registration
	nextID int

	listErr    error
	byEventErr error
	createErr  error
	reserveErr error
	gets       int

	// beforeRegList runs once, between the event and registration reads of a load.
	beforeRegList func()
}

func (s *store) id() domain.ID {
	s.nextID++
	return domain.ID(strconv.Itoa(100 + s.nextID))
}

func (s *store) find(id domain.ID) int {
	for i := range s.events {
		if s.events[i].ID == id {
			return i
		}
	}
	return -1
}

type fakeEvents struct{ s *store }

func (f fakeEvents) List(ctx context.Context) ([]domain.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.listErr != nil {
		return nil, f.s.listErr
	}
	return append([]domain.Event(nil), f.s.events...), nil
}

func (f fakeEvents) Get(ctx context.Context, id domain.ID) (domain.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.gets++
	if i := f.s.find(id); i >= 0 {
		return f.s.events[i], nil
	}
	return domain.Event{}, domain.ErrNotFound("event")
}

func (f fakeEvents) Create(ctx context.Context, e domain.Event) (domain.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.createErr != nil {
		return domain.Event{}, f.s.createErr
	}
	e.ID = f.s.id()
	f.s.events = append(f.s.events, e)
	return e, nil
}

func (f fakeEvents) Update(ctx context.Context, e domain.Event) (domain.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	i := f.s.find(e.ID)
	if i < 0 {
		return domain.Event{}, domain.ErrNotFound("event")
	}
	f.s.events[i] = e
	return e, nil
}

func (f fakeEvents) Delete(ctx context.Context, id domain.ID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	i := f.s.find(id)
	if i < 0 {
		return domain.ErrNotFound("event")
	}
	f.s.events = append(f.s.events[:i], f.s.events[i+1:]...)
	return nil
}

type fakeRegs struct{ s *store }

func (f fakeRegs) List(ctx context.Context) ([]domain.Registration, error) {
	f.s.mu.Lock()
	hook := f.s.beforeRegList
	f.s.beforeRegList = nil
	f.s.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return append([]domain.Registration(nil), f.s.regs...), nil
}

func (f fakeRegs) ListByEvent(ctx context.Context, eventID domain.ID) ([]domain.Registration, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.byEventErr != nil {
		return nil, f.s.byEventErr
	}
	var out []domain.Registration
	for _, r := range f.s.regs {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeSeats struct{ s *store }

func (f fakeSeats) Reserve(ctx context.Context, ev domain.Event, reg domain.Registration) (domain.Registration, domain.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.reserveErr != nil {
		return domain.Registration{}, domain.Event{}, f.s.reserveErr
	}
	i := f.s.find(ev.ID)
	if i < 0 {
		return domain.Registration{}, domain.Event{}, domain.ErrNotFound("event")
	}
	reg.ID = f.s.id()
	f.s.regs = append(f.s.regs, reg)
	f.s.events[i].RegisteredAttendees++
	return reg, f.s.events[i], nil
}

func (f fakeSeats) Release(ctx context.Context, ev domain.Event, reg domain.Registration) (domain.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for j := range f.s.regs {
		if f.s.regs[j].ID == reg.ID {
			f.s.regs = append(f.s.regs[:j], f.s.regs[j+1:]...)
			i := f.s.find(ev.ID)
			if f.s.events[i].RegisteredAttendees > 0 {
				f.s.events[i].RegisteredAttendees--
			}
			return f.s.events[i], nil
		}
	}
	return domain.Event{}, domain.ErrNotFound("registration")
}

type fakeLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	keys  []string
	err   error
}

func (l *fakeLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	if l.err != nil {
		l.mu.Unlock()
		return nil, l.err
	}
	if l.locks == nil {
		l.locks = map[string]*sync.Mutex{}
	}
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.keys = append(l.keys, key)
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

type published struct {
	key     string
	payload any
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(ctx context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{key, payload})
	return p.err
}

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, m := range p.msgs {
		out = append(out, m.key)
	}
	return out
}

var errBoom = errors.New("boom")
