package mood

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zhouzirui/mind-chat/backend/internal/model/locale"
	model "github.com/zhouzirui/mind-chat/backend/internal/model/mood"
	"github.com/zhouzirui/mind-chat/backend/internal/storage"
	"github.com/zhouzirui/mind-chat/backend/pkg/utils"
)

// Service 负责情绪记录的写入：每个用户每天一条。
//
// Writes for the same key are serialized inside this process. Two processes
// writing different moods for the same key race and the store keeps the last
// write; no optimistic concurrency control is applied.
type Service struct {
	repo   storage.Moods
	keys   *utils.KeyedMutex
	logger *zap.Logger
}

// NewService builds the mood service on repo.
func NewService(repo storage.Moods, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		keys:   utils.NewKeyedMutex(),
		logger: logger.Named("mood"),
	}
}

// Upsert validates (main, sub) and the date, then creates or overwrites the
// record for key. Repeating the same call leaves the same stored state.
func (s *Service) Upsert(ctx context.Context, key model.Key, main, sub string, lang locale.Lang) (model.Record, error) {
	pair, err := model.Validate(main, sub)
	if err != nil {
		return model.Record{}, err
	}
	if err := key.Validate(); err != nil {
		return model.Record{}, err
	}

	unlock := s.keys.Lock(lockKey(key))
	defer unlock()

	existing, err := s.repo.FindMoodByKey(ctx, key)
	if err != nil {
		return model.Record{}, fmt.Errorf("load mood: %w", err)
	}

	var rec model.Record
	if existing != nil {
		rec = *existing
	} else {
		rec = model.Record{UserID: key.UserID, Year: key.Year, Month: key.Month, Day: key.Day}
	}
	rec.Main = pair.Main
	rec.Sub = pair.Sub
	rec.Lang = string(lang)

	if err := s.repo.UpsertMood(ctx, &rec); err != nil {
		return model.Record{}, fmt.Errorf("save mood: %w", err)
	}

	s.logger.Debug("mood stored",
		zap.String("user", key.UserID),
		zap.String("pair", pair.Key()),
		zap.Bool("overwrite", existing != nil),
	)
	return rec, nil
}

// ByMonth lists a user's records for one month.
func (s *Service) ByMonth(ctx context.Context, userID string, year, month int) ([]model.Record, error) {
	if month < 1 || month > 12 || year < 1 {
		return nil, fmt.Errorf("%w: %04d-%02d", model.ErrInvalidDate, year, month)
	}
	records, err := s.repo.FindMoodsByUserAndMonth(ctx, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("list moods by month: %w", err)
	}
	return records, nil
}

// All lists every record of a user.
func (s *Service) All(ctx context.Context, userID string) ([]model.Record, error) {
	records, err := s.repo.FindAllMoodsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list moods: %w", err)
	}
	return records, nil
}

func lockKey(k model.Key) string {
	return fmt.Sprintf("%s|%04d-%02d-%02d", k.UserID, k.Year, k.Month, k.Day)
}
