package judge

import (
	"sort"
	"sync"
)

// UserRegistry catalogs users. User id 0 ("root") always exists (§3).
type UserRegistry struct {
	mu    sync.Mutex
	users []User
}

func NewUserRegistry() *UserRegistry {
	return &UserRegistry{users: []User{{ID: 0, Name: "root"}}}
}

// Restore inserts a user loaded from the persistence mirror at startup,
// bypassing id allocation and uniqueness checks (the mirror is trusted to
// already hold a consistent snapshot). A restore of id 0 is a no-op since
// root always exists.
func (r *UserRegistry) Restore(u User) {
	if u.ID == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u)
}

// Create adds a user with the next id (max existing + 1); name must be unique.
func (r *UserRegistry) Create(name string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Name == name {
			return User{}, ErrInvalidArgument("user name already exists")
		}
	}
	maxID := 0
	for _, u := range r.users {
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	u := User{ID: maxID + 1, Name: name}
	r.users = append(r.users, u)
	return u, nil
}

// Update renames an existing user; the new name must not collide with any
// other user.
func (r *UserRegistry) Update(id int, name string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i, u := range r.users {
		if u.ID == id {
			idx = i
		} else if u.Name == name {
			return User{}, ErrInvalidArgument("user name already exists")
		}
	}
	if idx < 0 {
		return User{}, ErrNotFound("user not found")
	}
	r.users[idx].Name = name
	return r.users[idx], nil
}

func (r *UserRegistry) Get(id int) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound("user not found")
}

// Exists reports whether id names a registered user.
func (r *UserRegistry) Exists(id int) bool {
	_, err := r.Get(id)
	return err == nil
}

// NameOf returns the user's name, or "" if unknown.
func (r *UserRegistry) NameOf(id int) string {
	u, err := r.Get(id)
	if err != nil {
		return ""
	}
	return u.Name
}

// List returns all users sorted by id ascending.
func (r *UserRegistry) List() []User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, len(r.users))
	copy(out, r.users)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllIDs returns every known user id, sorted ascending.
func (r *UserRegistry) AllIDs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, len(r.users))
	for i, u := range r.users {
		ids[i] = u.ID
	}
	sort.Ints(ids)
	return ids
}
