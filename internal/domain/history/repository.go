package history

import (
	"context"

	"github.com/laraxichu/goteo/internal/domain/infusion"
)

// Repository es el almacén externo del historial, particionado por usuario.
// Append asigna el id; List devuelve más reciente primero.
type Repository interface {
	Append(ctx context.Context, e Entry) (string, error)
	List(ctx context.Context, userID string, filter ListFilter) ([]Entry, error)
	Get(ctx context.Context, userID, id string) (Entry, error)
	Remove(ctx context.Context, userID, id string) error
}

type ListFilter struct {
	Kind  infusion.Mode // vacío = ambos
	Limit int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// NormalizedLimit aplica el default y el tope que usan todos los adapters.
func (f ListFilter) NormalizedLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultListLimit
	case f.Limit > MaxListLimit:
		return MaxListLimit
	}
	return f.Limit
}
