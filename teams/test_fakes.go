package teams

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/user/timemanager-go/domain"
	"github.com/user/timemanager-go/users"
)

// FakeStore is a test-only fake implementing Store. Membership is kept on
// the users of the given users.FakeStore, as the real schema keeps it on
// users.team_id.
type FakeStore struct {
	mu        sync.RWMutex
	teams     map[int64]domain.Team
	nextID    int64
	directory *users.FakeStore
}

func NewFakeStore(directory *users.FakeStore) *FakeStore {
	return &FakeStore{teams: make(map[int64]domain.Team), directory: directory}
}

func (f *FakeStore) withMembers(ctx context.Context, team domain.Team) domain.Team {
	team.Members = []domain.User{}
	all, _ := f.directory.List(ctx)
	for _, u := range all {
		if u.TeamID != nil && *u.TeamID == team.ID {
			team.Members = append(team.Members, u)
		}
	}
	return team
}

func (f *FakeStore) List(ctx context.Context) ([]domain.Team, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	teams := make([]domain.Team, 0, len(f.teams))
	for _, t := range f.teams {
		teams = append(teams, f.withMembers(ctx, t))
	}
	slices.SortFunc(teams, func(a, b domain.Team) int { return int(a.ID - b.ID) })
	return teams, nil
}

func (f *FakeStore) FindByID(ctx context.Context, id int64) (*domain.Team, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.teams[id]
	if !ok {
		return nil, errTeamNotFound
	}
	t = f.withMembers(ctx, t)
	return &t, nil
}

func (f *FakeStore) Create(_ context.Context, team *domain.Team) (*domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	created := *team
	created.ID = f.nextID
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt
	created.Members = []domain.User{}
	f.teams[created.ID] = created
	return &created, nil
}

func (f *FakeStore) Update(ctx context.Context, id int64, c Changes) (*domain.Team, error) {
	f.mu.Lock()
	t, ok := f.teams[id]
	if !ok {
		f.mu.Unlock()
		return nil, errTeamNotFound
	}
	if c.Name != nil {
		t.Name = *c.Name
	}
	if c.Description != nil {
		t.Description = c.Description
	}
	if c.ManagerID != nil {
		t.ManagerID = c.ManagerID
	}
	t.UpdatedAt = time.Now().UTC()
	f.teams[id] = t
	f.mu.Unlock()
	return f.FindByID(ctx, id)
}

func (f *FakeStore) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return errTeamNotFound
	}
	for _, m := range f.withMembers(ctx, t).Members {
		f.directory.SetTeam(nil, m.ID)
	}
	delete(f.teams, id)
	return nil
}

func (f *FakeStore) SetMembers(_ context.Context, id int64, userIDs []int64) error {
	f.mu.RLock()
	_, ok := f.teams[id]
	f.mu.RUnlock()
	if !ok {
		return errTeamNotFound
	}
	f.directory.SetTeam(&id, userIDs...)
	return nil
}
