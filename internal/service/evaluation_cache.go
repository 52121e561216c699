package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"interview-byte/internal/cache"
	"interview-byte/internal/domain"
	"interview-byte/internal/logger"

	"go.uber.org/zap"
)

// EvaluationCacheService defines the interface for evaluation caching operations.
// Resubmitting an identical answer to the same question is common (retry after
// a transient failure, bulk submit), so verdicts are cached by content.
type EvaluationCacheService interface {
	GetEvaluationFromCache(ctx context.Context, question, answer string) (*domain.Evaluation, error)
	PutEvaluationToCache(ctx context.Context, question, answer string, evaluation *domain.Evaluation) error
}

// evaluationCacheServiceImpl implements EvaluationCacheService
type evaluationCacheServiceImpl struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewEvaluationCacheService creates a new instance of evaluationCacheServiceImpl.
// A nil cache disables caching; both methods then degrade to no-ops.
func NewEvaluationCacheService(c domain.Cache, ttl time.Duration) EvaluationCacheService {
	return &evaluationCacheServiceImpl{cache: c, ttl: ttl}
}

// GetEvaluationFromCache retrieves a cached evaluation for the exact
// question/answer pair. A miss, a disabled cache, and an undecodable entry
// all return (nil, nil); only real cache errors propagate.
func (s *evaluationCacheServiceImpl) GetEvaluationFromCache(ctx context.Context, question, answer string) (*domain.Evaluation, error) {
	if s.cache == nil {
		return nil, nil
	}

	key := evaluationCacheKey(question, answer)
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		if err == domain.ErrCacheMiss {
			logger.Get().Debug("EvaluationCacheService: Cache miss", zap.String("key", key))
			return nil, nil
		}
		logger.Get().Error("EvaluationCacheService: Cache Get failed", zap.Error(err), zap.String("key", key))
		return nil, err
	}

	var evaluation domain.Evaluation
	if err := json.Unmarshal([]byte(cached), &evaluation); err != nil {
		logger.Get().Warn("EvaluationCacheService: Failed to unmarshal cached evaluation, dropping entry",
			zap.Error(err),
			zap.String("key", key))
		_ = s.cache.Delete(ctx, key)
		return nil, nil
	}

	logger.Get().Info("EvaluationCacheService: Cache hit", zap.String("key", key))
	return &evaluation, nil
}

// PutEvaluationToCache stores an evaluation under the question/answer hash.
func (s *evaluationCacheServiceImpl) PutEvaluationToCache(ctx context.Context, question, answer string, evaluation *domain.Evaluation) error {
	if s.cache == nil || evaluation == nil {
		return nil
	}

	data, err := json.Marshal(evaluation)
	if err != nil {
		return err
	}

	key := evaluationCacheKey(question, answer)
	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		logger.Get().Error("EvaluationCacheService: Cache Set failed", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

func evaluationCacheKey(question, answer string) string {
	digest := sha256.Sum256([]byte(question + "\x00" + answer))
	return cache.GenerateCacheKey("evaluation", "answer", hex.EncodeToString(digest[:]))
}
