package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

type RecordRepository interface {
	Create(ctx context.Context, r *domain.Record) error
	Get(ctx context.Context, id int64) (*domain.Record, error)
	List(ctx context.Context) ([]*domain.Record, error)
	Update(ctx context.Context, r *domain.Record) error
	Delete(ctx context.Context, id int64) error
}

// RecordCache holds the full list; implementations return an error on a miss.
type RecordCache interface {
	GetList(ctx context.Context) ([]*domain.Record, error)
	SetList(ctx context.Context, records []*domain.Record) error
	Invalidate(ctx context.Context) error
}

// RecordService is the CRUD surface over stored message records.
type RecordService struct {
	repo  RecordRepository
	cache RecordCache
	log   *zap.Logger
}

// NewRecordService builds the service; cache may be nil.
func NewRecordService(repo RecordRepository, cache RecordCache, log *zap.Logger) *RecordService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecordService{repo: repo, cache: cache, log: log}
}

type CreateRecordCommand struct {
	Text      string
	From      *string
	Level     domain.Severity
	Timestamp time.Time
}

// upstream keeps domain errors as they are and marks everything else as an upstream failure.
func upstream(op string, err error) error {
	for _, known := range []error{domain.ErrNotFound, domain.ErrValidation} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrUpstream, op, err)
}

func (s *RecordService) Create(ctx context.Context, cmd CreateRecordCommand) (*domain.Record, error) {
	rec, err := domain.NewRecord(cmd.Text, cmd.From, cmd.Level, cmd.Timestamp)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, upstream("create record", err)
	}
	s.invalidate(ctx)
	return rec, nil
}

func (s *RecordService) Get(ctx context.Context, id int64) (*domain.Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, upstream("get record", err)
	}
	return rec, nil
}

// List returns records newest first, served from the cache when possible.
func (s *RecordService) List(ctx context.Context) ([]*domain.Record, error) {
	if s.cache != nil {
		if recs, err := s.cache.GetList(ctx); err == nil {
			return recs, nil
		}
	}

	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, upstream("list records", err)
	}

	if s.cache != nil {
		if err := s.cache.SetList(ctx, recs); err != nil {
			s.log.Warn("record cache fill failed", zap.Error(err))
		}
	}
	return recs, nil
}

func (s *RecordService) Update(ctx context.Context, id int64, patch domain.RecordPatch) (*domain.Record, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, upstream("get record", err)
	}
	patch.Apply(rec)
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, upstream("update record", err)
	}
	s.invalidate(ctx)
	return rec, nil
}

func (s *RecordService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return upstream("delete record", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *RecordService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("record cache invalidation failed", zap.Error(err))
	}
}
