package history

import (
	"time"

	"github.com/laraxichu/goteo/internal/domain/infusion"
)

// Entry es un cálculo persistido. Una vez guardado no se modifica; solo se puede borrar.
type Entry struct {
	ID        string
	UserID    string
	Result    infusion.Result
	CreatedAt time.Time // igual al timestamp del resultado
}
