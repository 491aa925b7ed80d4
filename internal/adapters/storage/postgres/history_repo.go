package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laraxichu/goteo/internal/domain/history"
	"github.com/laraxichu/goteo/internal/domain/infusion"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS calculations (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	seq        BIGSERIAL NOT NULL,
	app_id     TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	payload    JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS calculations_user_idx
	ON calculations (app_id, user_id, created_at DESC, seq DESC);
`

// HistoryRepo guarda el historial en la tabla calculations.
// appID separa los datos de distintas instancias que comparten la base.
type HistoryRepo struct {
	db    *sql.DB
	appID string
}

func NewHistoryRepo(db *sql.DB, appID string) *HistoryRepo {
	return &HistoryRepo{db: db, appID: strings.TrimSpace(appID)}
}

// EnsureSchema crea la tabla y el índice si no existen.
func (r *HistoryRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *HistoryRepo) Append(ctx context.Context, e history.Entry) (string, error) {
	if strings.TrimSpace(e.UserID) == "" {
		return "", errors.New("entry user id required")
	}
	if !e.Result.Valid() {
		return "", errors.New("entry result must carry exactly one shape")
	}

	payload, err := json.Marshal(e.Result)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}

	var id string
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO calculations (app_id, user_id, kind, created_at, payload)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`,
		r.appID,
		e.UserID,
		string(e.Result.Kind),
		e.CreatedAt.UTC(),
		payload,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *HistoryRepo) List(ctx context.Context, userID string, filter history.ListFilter) ([]history.Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []history.Entry{}, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT id, user_id, created_at, payload
		FROM calculations
		WHERE app_id = $1 AND user_id = $2
	`)
	args := []any{r.appID, userID}
	argN := 3

	if filter.Kind != "" {
		sb.WriteString(fmt.Sprintf(" AND kind = $%d", argN))
		args = append(args, string(filter.Kind))
		argN++
	}

	sb.WriteString(" ORDER BY created_at DESC, seq DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, filter.NormalizedLimit())

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]history.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *HistoryRepo) Get(ctx context.Context, userID, id string) (history.Entry, error) {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return history.Entry{}, history.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, payload
		FROM calculations
		WHERE app_id = $1 AND user_id = $2 AND id = $3
	`, r.appID, userID, strings.TrimSpace(id))

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return history.Entry{}, history.ErrNotFound
		}
		return history.Entry{}, err
	}
	return e, nil
}

func (r *HistoryRepo) Remove(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return history.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM calculations
		WHERE app_id = $1 AND user_id = $2 AND id = $3
	`, r.appID, userID, strings.TrimSpace(id))
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return history.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (history.Entry, error) {
	var (
		e         history.Entry
		createdAt time.Time
		payload   []byte
	)
	if err := s.Scan(&e.ID, &e.UserID, &createdAt, &payload); err != nil {
		return history.Entry{}, err
	}

	var res infusion.Result
	if err := json.Unmarshal(payload, &res); err != nil {
		return history.Entry{}, fmt.Errorf("decode payload %s: %w", e.ID, err)
	}
	if !res.Valid() {
		return history.Entry{}, fmt.Errorf("decode payload %s: result has no shape", e.ID)
	}

	e.CreatedAt = createdAt.UTC()
	e.Result = res
	return e, nil
}
