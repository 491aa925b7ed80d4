package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/laraxichu/goteo/internal/domain/history"
	"github.com/laraxichu/goteo/internal/domain/infusion"
)

// Options de conexión; vienen de storage.redis_* en la config.
type Options struct {
	Addr     string
	Password string
	DB       int
}

func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

func Ping(ctx context.Context, c *redis.Client) error {
	return c.Ping(ctx).Err()
}

// HistoryRepo guarda cada usuario en un hash (id -> JSON) más un sorted set
// por tipo con score = created_at en ms.
//
//	goteo:{app}:history:{user}:entries
//	goteo:{app}:history:{user}:idx:all|time|flow
type HistoryRepo struct {
	c      *redis.Client
	prefix string
	newID  func() string
}

func NewHistoryRepo(c *redis.Client, appID string) *HistoryRepo {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		appID = "default"
	}
	return &HistoryRepo{
		c:      c,
		prefix: "goteo:" + appID + ":history:",
		newID:  uuid.NewString,
	}
}

type storedEntry struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	Result    infusion.Result `json:"result"`
}

func (r *HistoryRepo) entriesKey(userID string) string {
	return r.prefix + userID + ":entries"
}

func (r *HistoryRepo) indexKey(userID string, kind infusion.Mode) string {
	if kind == "" {
		return r.prefix + userID + ":idx:all"
	}
	return r.prefix + userID + ":idx:" + string(kind)
}

func (r *HistoryRepo) Append(ctx context.Context, e history.Entry) (string, error) {
	if strings.TrimSpace(e.UserID) == "" {
		return "", errors.New("entry user id required")
	}
	if !e.Result.Valid() {
		return "", errors.New("entry result must carry exactly one shape")
	}

	e.ID = r.newID()
	raw, err := json.Marshal(storedEntry{ID: e.ID, UserID: e.UserID, CreatedAt: e.CreatedAt.UTC(), Result: e.Result})
	if err != nil {
		return "", fmt.Errorf("marshal entry: %w", err)
	}

	score := float64(e.CreatedAt.UnixMilli())
	_, err = r.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, r.entriesKey(e.UserID), e.ID, raw)
		p.ZAdd(ctx, r.indexKey(e.UserID, ""), &redis.Z{Score: score, Member: e.ID})
		p.ZAdd(ctx, r.indexKey(e.UserID, e.Result.Kind), &redis.Z{Score: score, Member: e.ID})
		return nil
	})
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

func (r *HistoryRepo) List(ctx context.Context, userID string, filter history.ListFilter) ([]history.Entry, error) {
	limit := int64(filter.NormalizedLimit())

	ids, err := r.c.ZRevRange(ctx, r.indexKey(userID, filter.Kind), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]history.Entry, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	vals, err := r.c.HMGet(ctx, r.entriesKey(userID), ids...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// índice huérfano; el hash manda
			continue
		}
		e, err := decodeEntry(s)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", ids[i], err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *HistoryRepo) Get(ctx context.Context, userID, id string) (history.Entry, error) {
	s, err := r.c.HGet(ctx, r.entriesKey(userID), id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return history.Entry{}, history.ErrNotFound
		}
		return history.Entry{}, err
	}
	return decodeEntry(s)
}

func (r *HistoryRepo) Remove(ctx context.Context, userID, id string) error {
	e, err := r.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	_, err = r.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HDel(ctx, r.entriesKey(userID), id)
		p.ZRem(ctx, r.indexKey(userID, ""), id)
		p.ZRem(ctx, r.indexKey(userID, e.Result.Kind), id)
		return nil
	})
	return err
}

func decodeEntry(s string) (history.Entry, error) {
	var se storedEntry
	if err := json.Unmarshal([]byte(s), &se); err != nil {
		return history.Entry{}, fmt.Errorf("decode entry: %w", err)
	}
	if !se.Result.Valid() {
		return history.Entry{}, errors.New("decode entry: result has no shape")
	}
	return history.Entry{
		ID:        se.ID,
		UserID:    se.UserID,
		CreatedAt: se.CreatedAt.UTC(),
		Result:    se.Result,
	}, nil
}
