package users

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/domain"
)

// FakeStore is a test-only fake implementing Store. It keeps users in a map
// and exposes an error field for behavior injection. Other packages' tests
// use it as their identity collaborator.
type FakeStore struct {
	mu     sync.RWMutex
	users  map[int64]domain.User
	nextID int64
	Err    error
}

func NewFakeStore(seed ...domain.User) *FakeStore {
	f := &FakeStore{users: make(map[int64]domain.User)}
	for _, u := range seed {
		f.users[u.ID] = u
		f.nextID = max(f.nextID, u.ID)
	}
	return f
}

func (f *FakeStore) FindByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.Err != nil {
		return nil, f.Err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("User not found", nil)
	}
	return &u, nil
}

func (f *FakeStore) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var found *domain.User
	for _, u := range f.users {
		if u.Username == login {
			return &u, nil
		}
		if u.Email == strings.ToLower(login) && (found == nil || u.ID < found.ID) {
			found = &u
		}
	}
	if found == nil {
		return nil, apperror.NewNotFoundError("User not found", nil)
	}
	return found, nil
}

func (f *FakeStore) List(_ context.Context) ([]domain.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.Err != nil {
		return nil, f.Err
	}
	users := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.User) int { return int(a.ID - b.ID) })
	return users, nil
}

func (f *FakeStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if err := f.checkUnique(0, user.Username, user.Email); err != nil {
		return nil, err
	}
	f.nextID++
	created := *user
	created.ID = f.nextID
	if created.Role == "" {
		created.Role = domain.RoleEmployee
	}
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt
	f.users[created.ID] = created
	return &created, nil
}

func (f *FakeStore) Update(_ context.Context, id int64, c Changes) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("User not found", nil)
	}
	username, email := u.Username, u.Email
	if c.Username != nil {
		username = *c.Username
	}
	if c.Email != nil {
		email = *c.Email
	}
	if err := f.checkUnique(id, username, email); err != nil {
		return nil, err
	}
	u.Username, u.Email = username, email
	if c.PasswordHash != nil {
		u.PasswordHash = *c.PasswordHash
	}
	if c.FirstName != nil {
		u.FirstName = *c.FirstName
	}
	if c.LastName != nil {
		u.LastName = *c.LastName
	}
	switch {
	case c.ClearPhoneNumber:
		u.PhoneNumber = nil
	case c.PhoneNumber != nil:
		u.PhoneNumber = c.PhoneNumber
	}
	if c.Role != nil {
		u.Role = *c.Role
	}
	switch {
	case c.ClearTeam:
		u.TeamID = nil
	case c.TeamID != nil:
		u.TeamID = c.TeamID
	}
	if !c.Empty() {
		u.UpdatedAt = time.Now().UTC()
	}
	f.users[id] = u
	return &u, nil
}

func (f *FakeStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if _, ok := f.users[id]; !ok {
		return apperror.NewNotFoundError("User not found", nil)
	}
	delete(f.users, id)
	return nil
}

// SetTeam moves users into teamID, mirroring the teams store's UPDATE.
func (f *FakeStore) SetTeam(teamID *int64, ids ...int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			u.TeamID = teamID
			f.users[id] = u
		}
	}
}

func (f *FakeStore) checkUnique(self int64, username, email string) error {
	for id, u := range f.users {
		if id == self {
			continue
		}
		if u.Email == email {
			return apperror.NewConflictError("Email already used", domain.ErrEmailTaken)
		}
		if u.Username == username {
			return apperror.NewConflictError("Username already used", domain.ErrUsernameTaken)
		}
	}
	return nil
}
