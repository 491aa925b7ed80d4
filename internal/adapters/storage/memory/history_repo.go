package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/laraxichu/goteo/internal/domain/history"
)

// historyRepo guarda el historial por usuario en memoria. Se pierde al reiniciar.
type historyRepo struct {
	mu     sync.RWMutex
	byUser map[string][]history.Entry
	newID  func() string
}

func NewHistoryRepo() history.Repository {
	return &historyRepo{
		byUser: make(map[string][]history.Entry),
		newID:  uuid.NewString,
	}
}

func (r *historyRepo) Append(ctx context.Context, e history.Entry) (string, error) {
	if strings.TrimSpace(e.UserID) == "" {
		return "", errors.New("entry user id required")
	}
	if !e.Result.Valid() {
		return "", errors.New("entry result must carry exactly one shape")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = r.newID()
	r.byUser[e.UserID] = append(r.byUser[e.UserID], e)
	return e.ID, nil
}

func (r *historyRepo) List(ctx context.Context, userID string, filter history.ListFilter) ([]history.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]history.Entry, 0)
	for _, e := range r.byUser[userID] {
		if filter.Kind != "" && e.Result.Kind != filter.Kind {
			continue
		}
		out = append(out, e)
	}

	// Más reciente primero; a igual timestamp, el último agregado primero.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	reverseTies(out)

	if limit := filter.NormalizedLimit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *historyRepo) Get(ctx context.Context, userID, id string) (history.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.byUser[userID] {
		if e.ID == id {
			return e, nil
		}
	}
	return history.Entry{}, history.ErrNotFound
}

func (r *historyRepo) Remove(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.byUser[userID]
	for i, e := range items {
		if e.ID != id {
			continue
		}
		r.byUser[userID] = append(items[:i:i], items[i+1:]...)
		return nil
	}
	return history.ErrNotFound
}

// reverseTies invierte los tramos con el mismo CreatedAt (quedaron en orden de inserción).
func reverseTies(items []history.Entry) {
	for i := 0; i < len(items); {
		j := i + 1
		for j < len(items) && items[j].CreatedAt.Equal(items[i].CreatedAt) {
			j++
		}
		for a, b := i, j-1; a < b; a, b = a+1, b-1 {
			items[a], items[b] = items[b], items[a]
		}
		i = j
	}
}
