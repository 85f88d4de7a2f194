package clocks

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/user/timemanager-go/domain"
)

// FakeStore is a test-only fake implementing Store. Events live in a slice in
// insertion order; Serialize holds a single mutex, which is enough to make
// concurrent toggles observable in tests.
type FakeStore struct {
	mu       sync.Mutex
	toggleMu sync.Mutex
	events   []domain.ClockEvent
	nextID   int64
	Err      error
}

func NewFakeStore(seed ...domain.ClockEvent) *FakeStore {
	f := &FakeStore{}
	for _, e := range seed {
		f.nextID = max(f.nextID, e.ID)
	}
	f.events = append(f.events, seed...)
	return f
}

func (f *FakeStore) Append(_ context.Context, userID int64, status bool, at time.Time) (*domain.ClockEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.nextID++
	e := domain.ClockEvent{ID: f.nextID, UserID: userID, Status: status, Time: at}
	f.events = append(f.events, e)
	return &e, nil
}

func (f *FakeStore) Last(_ context.Context, userID int64) (*domain.ClockEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var last *domain.ClockEvent
	for i := range f.events {
		e := f.events[i]
		if e.UserID != userID {
			continue
		}
		if last == nil || !e.Time.Before(last.Time) {
			last = &e
		}
	}
	return last, nil
}

func (f *FakeStore) Query(_ context.Context, userID int64, w Window) ([]domain.ClockEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	events := []domain.ClockEvent{}
	for _, e := range f.events {
		if e.UserID != userID {
			continue
		}
		if w.Start != nil && e.Time.Before(*w.Start) {
			continue
		}
		if w.End != nil && e.Time.After(*w.End) {
			continue
		}
		events = append(events, e)
	}
	slices.SortStableFunc(events, func(a, b domain.ClockEvent) int { return a.Time.Compare(b.Time) })
	return events, nil
}

func (f *FakeStore) Serialize(_ context.Context, _ int64, fn func(Store) error) error {
	f.toggleMu.Lock()
	defer f.toggleMu.Unlock()
	return fn(f)
}

// Events returns a copy of everything appended so far.
func (f *FakeStore) Events() []domain.ClockEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.events)
}
