package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/laraxichu/goteo/internal/domain/infusion"
	"github.com/laraxichu/goteo/internal/platform/logger"
)

var (
	ErrInvalidInput = infusion.ErrInvalidInput
	ErrNotFound     = errors.New("history entry not found")
	ErrPersistence  = errors.New("could not persist calculation")
)

// ResultSink recibe cada cálculo nuevo (la sesión del usuario lo usa como "último resultado").
type ResultSink interface {
	ApplyResult(userID string, r infusion.Result) error
}

type Service struct {
	repo Repository
	calc *infusion.Calculator
	sink ResultSink
	log  logger.Logger
}

func NewService(repo Repository, calc *infusion.Calculator, sink ResultSink, log logger.Logger) *Service {
	if calc == nil {
		calc = infusion.NewCalculator()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo: repo,
		calc: calc,
		sink: sink,
		log:  log,
	}
}

// Submission es lo que devuelve Submit: el resultado siempre, el id solo si se guardó.
type Submission struct {
	Result  infusion.Result
	EntryID string
}

// Submit valida, calcula, actualiza la sesión y persiste.
// Si el guardado falla devuelve la Submission con el resultado y un error ErrPersistence;
// el cálculo no se descarta y no se reintenta.
func (s *Service) Submit(ctx context.Context, userID string, raw infusion.RawInput) (Submission, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Submission{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}

	in, err := infusion.Validate(raw)
	if err != nil {
		return Submission{}, err
	}

	res, err := s.calc.Compute(in)
	if err != nil {
		return Submission{}, err
	}

	if s.sink != nil {
		if err := s.sink.ApplyResult(userID, res); err != nil {
			s.log.Warn("session not updated", map[string]any{"user_id": userID, "error": err})
		}
	}

	sub := Submission{Result: res}

	id, err := s.repo.Append(ctx, Entry{
		UserID:    userID,
		Result:    res,
		CreatedAt: res.Timestamp(),
	})
	if err != nil {
		s.log.Error("history append failed", map[string]any{"user_id": userID, "error": err})
		return sub, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	sub.EntryID = id
	return sub, nil
}

func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, filter.Kind)
	}

	items, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Entry, error) {
	userID, id = strings.TrimSpace(userID), strings.TrimSpace(id)
	if userID == "" || id == "" {
		return Entry{}, ErrInvalidInput
	}

	e, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	userID, id = strings.TrimSpace(userID), strings.TrimSpace(id)
	if userID == "" || id == "" {
		return ErrInvalidInput
	}

	if err := s.repo.Remove(ctx, userID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		s.log.Error("history remove failed", map[string]any{"user_id": userID, "entry_id": id, "error": err})
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}
