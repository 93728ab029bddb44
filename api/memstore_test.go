package main

import (
	"sort"
	"sync"
	"time"
)

// memStore is a map-backed store used by handler tests. It mirrors the
// SQL store's contract: nil for missing rows, duplicate sentinels for
// uniqueness violations, and owner-scoped lookups throughout.
type memStore struct {
	mu     sync.Mutex
	users  map[int64]*user
	tasks  map[int64]*task
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[int64]*user),
		tasks: make(map[int64]*task),
	}
}

func (m *memStore) insertUser(u *user) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return errDuplicateUsername
		}
		if existing.Email == u.Email {
			return errDuplicateEmail
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) getUserByUsername(username string) (*user, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) getUserByEmail(email string) (*user, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) deleteUserByUsername(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if u.Username == username {
			delete(m.users, id)
		}
	}
}

func sortTasks(tasks []task) []task {
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

func (m *memStore) tasksForOwner(ownerID int64) ([]task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := make([]task, 0)
	for _, t := range m.tasks {
		if t.OwnerID == ownerID {
			tasks = append(tasks, *t)
		}
	}
	return sortTasks(tasks), nil
}

func (m *memStore) tasksForOwnerByStatus(ownerID int64, completed bool) ([]task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := make([]task, 0)
	for _, t := range m.tasks {
		if t.OwnerID == ownerID && t.Completed == completed {
			tasks = append(tasks, *t)
		}
	}
	return sortTasks(tasks), nil
}

func (m *memStore) allTasks() ([]task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := make([]task, 0)
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	return sortTasks(tasks), nil
}

func (m *memStore) taskByID(ownerID, id int64) (*task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) taskByTitle(ownerID int64, title string) (*task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.OwnerID == ownerID && t.Title == title {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) insertTask(t *task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tasks {
		if existing.OwnerID == t.OwnerID && existing.Title == t.Title {
			return errDuplicateTitle
		}
	}
	m.nextID++
	t.ID = m.nextID
	t.CreatedAt = time.Now()
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memStore) updateTask(t *task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tasks {
		if existing.OwnerID == t.OwnerID && existing.Title == t.Title && existing.ID != t.ID {
			return errDuplicateTitle
		}
	}
	stored, ok := m.tasks[t.ID]
	if !ok || stored.OwnerID != t.OwnerID {
		// matches UPDATE ... WHERE hitting zero rows
		return nil
	}
	stored.Title = t.Title
	stored.Completed = t.Completed
	return nil
}

func (m *memStore) deleteTaskByID(ownerID, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return false, nil
	}
	delete(m.tasks, id)
	return true, nil
}

func (m *memStore) deleteTaskByTitle(ownerID int64, title string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tasks {
		if t.OwnerID == ownerID && t.Title == title {
			delete(m.tasks, id)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) taskCounts(ownerID int64) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total, completed int64
	for _, t := range m.tasks {
		if t.OwnerID == ownerID {
			total++
			if t.Completed {
				completed++
			}
		}
	}
	return total, completed, nil
}
