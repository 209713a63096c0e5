package server

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"todoweb/internal/models"
)

// fakeStore is an in-memory TodoStore for handler tests.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	todos   map[int64]models.Todo
	now     func() time.Time
	err     error
	pingErr error
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{nextID: 1, todos: map[int64]models.Todo{}, now: now}
}

func (f *fakeStore) List(_ context.Context, query string) ([]models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	out := []models.Todo{}
	for _, t := range f.todos {
		if query == "" || strings.Contains(t.Title, query) || strings.Contains(t.Description, query) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.todos), f.err
}

func (f *fakeStore) CountCompleted(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.todos {
		if t.Completed {
			n++
		}
	}
	return n, f.err
}

func (f *fakeStore) Create(_ context.Context, title, description string) (models.Todo, error) {
	if err := models.ValidateText(title, description); err != nil {
		return models.Todo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Todo{}, f.err
	}

	t := models.Todo{ID: f.nextID, Title: title, Description: description, CreatedAt: f.now().UTC()}
	f.todos[t.ID] = t
	f.nextID++
	return t, nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.todos[id]
	if !ok {
		return models.Todo{}, fmt.Errorf("todo %d: %w", id, models.ErrNotFound)
	}
	return t, nil
}

func (f *fakeStore) Update(_ context.Context, id int64, title, description string) (models.Todo, error) {
	if err := models.ValidateText(title, description); err != nil {
		return models.Todo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.todos[id]
	if !ok {
		return models.Todo{}, fmt.Errorf("todo %d: %w", id, models.ErrNotFound)
	}
	t.Title, t.Description = title, description
	f.todos[id] = t
	return t, nil
}

func (f *fakeStore) ToggleCompleted(_ context.Context, id int64) (models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Todo{}, f.err
	}
	t, ok := f.todos[id]
	if !ok {
		return models.Todo{}, fmt.Errorf("todo %d: %w", id, models.ErrNotFound)
	}
	t.Completed = !t.Completed
	f.todos[id] = t
	return t, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.todos[id]; !ok {
		return fmt.Errorf("todo %d: %w", id, models.ErrNotFound)
	}
	delete(f.todos, id)
	return nil
}

func (f *fakeStore) Ping(context.Context) error {
	return f.pingErr
}
