package service

import (
	"context"
	"strings"
	"sync"

	"interview-byte/internal/config"
	"interview-byte/internal/domain"
	"interview-byte/internal/dto"
	"interview-byte/internal/logger"
	"interview-byte/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SessionService defines the interface for interview session operations
type SessionService interface {
	StartSession(ctx context.Context, req *dto.StartSessionRequest) (*dto.SessionResponse, error)
	GetSession(sessionID string) (*dto.SessionResponse, error)
	UpdateAnswer(sessionID string, index int, answer string) (*dto.QAItemResponse, error)
	SubmitAnswer(ctx context.Context, sessionID string, index int) (*dto.QAItemResponse, error)
	SubmitAll(ctx context.Context, sessionID string) (*dto.BulkSubmitResponse, error)
	ResetAnswer(sessionID string, index int) (*dto.QAItemResponse, error)
	ToggleEvaluationVisibility(sessionID string, index int) (*dto.QAItemResponse, error)
}

// sessionService implements SessionService over an in-memory, ULID-keyed
// session registry. Sessions are not persisted across restarts.
type sessionService struct {
	mu        sync.RWMutex
	sessions  map[string]*domain.InterviewSession
	generator domain.QuestionSetGenerator
	evaluator domain.AnswerEvaluator
	evalCache EvaluationCacheService
	cfg       *config.Config
}

// NewSessionService creates a new instance of sessionService.
// evalCache may be nil when caching is disabled.
func NewSessionService(
	generator domain.QuestionSetGenerator,
	evaluator domain.AnswerEvaluator,
	evalCache EvaluationCacheService,
	cfg *config.Config,
) SessionService {
	return &sessionService{
		sessions:  make(map[string]*domain.InterviewSession),
		generator: generator,
		evaluator: evaluator,
		evalCache: evalCache,
		cfg:       cfg,
	}
}

// StartSession creates a session and populates it with generated questions.
// Generation is attempted exactly once: a backend failure or malformed output
// degrades to a Ready session with zero items rather than an error, so the
// caller always receives a usable session.
func (s *sessionService) StartSession(ctx context.Context, req *dto.StartSessionRequest) (*dto.SessionResponse, error) {
	genReq := s.applyDefaults(req)

	session := domain.NewInterviewSession(util.NewULID(), genReq.Topic, genReq.Tone)

	questions, err := s.generator.Generate(ctx, genReq)
	if err != nil {
		logger.Get().Warn("Question generation failed, starting session with zero items",
			zap.Error(err),
			zap.String("session_id", session.ID()),
			zap.String("topic", genReq.Topic))
		questions = nil
	}
	session.Materialize(questions)

	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	logger.Get().Info("Interview session started",
		zap.String("session_id", session.ID()),
		zap.String("topic", genReq.Topic),
		zap.String("tone", genReq.Tone),
		zap.Int("questions", len(questions)))

	return sessionResponse(session), nil
}

// GetSession returns a snapshot of the session.
func (s *sessionService) GetSession(sessionID string) (*dto.SessionResponse, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionResponse(session), nil
}

// UpdateAnswer sets the answer text of one item. Content is not validated.
func (s *sessionService) UpdateAnswer(sessionID string, index int, answer string) (*dto.QAItemResponse, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.UpdateAnswer(index, answer); err != nil {
		return nil, err
	}
	return itemResponse(session, index)
}

// SubmitAnswer evaluates the current answer of one item. The session's
// pending guard ensures at most one evaluation call is outstanding per item;
// a concurrent duplicate gets EVALUATION_PENDING without touching the
// backend. Failures clear the pending flag and leave any prior evaluation
// in place, so the caller can simply resubmit.
func (s *sessionService) SubmitAnswer(ctx context.Context, sessionID string, index int) (*dto.QAItemResponse, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	evalReq, epoch, err := session.BeginEvaluation(index)
	if err != nil {
		return nil, err
	}

	if s.evalCache != nil {
		cached, cacheErr := s.evalCache.GetEvaluationFromCache(ctx, evalReq.Question, evalReq.Answer)
		if cacheErr == nil && cached != nil {
			if _, err := session.SettleEvaluation(index, epoch, cached); err != nil {
				return nil, err
			}
			return itemResponse(session, index)
		}
		// Cache errors fall through to the backend as a miss.
	}

	evaluation, evalErr := s.evaluator.Evaluate(ctx, evalReq)
	if evalErr != nil {
		if _, err := session.SettleEvaluation(index, epoch, nil); err != nil {
			return nil, err
		}
		logger.Get().Error("Answer evaluation failed",
			zap.Error(evalErr),
			zap.String("session_id", sessionID),
			zap.Int("index", index))
		return nil, evalErr
	}

	applied, err := session.SettleEvaluation(index, epoch, evaluation)
	if err != nil {
		return nil, err
	}
	if !applied {
		logger.Get().Info("Discarded stale evaluation result",
			zap.String("session_id", sessionID),
			zap.Int("index", index))
	}
	if applied && s.evalCache != nil {
		if err := s.evalCache.PutEvaluationToCache(ctx, evalReq.Question, evalReq.Answer, evaluation); err != nil {
			logger.Get().Warn("Failed to cache evaluation", zap.Error(err), zap.String("session_id", sessionID))
		}
	}

	return itemResponse(session, index)
}

// SubmitAll evaluates every item with a non-empty answer and no evaluation in
// flight, fanning out over a bounded worker group. Per-item failures are
// reported in the result list and never abort the other items.
func (s *sessionService) SubmitAll(ctx context.Context, sessionID string) (*dto.BulkSubmitResponse, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	indexes := session.SubmittableIndexes()
	results := make([]dto.BulkSubmitResult, len(indexes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Interview.SubmitWorkers)
	for i, index := range indexes {
		g.Go(func() error {
			item, err := s.SubmitAnswer(gctx, sessionID, index)
			if err != nil {
				results[i] = dto.BulkSubmitResult{Index: index, Error: err.Error()}
				return nil
			}
			results[i] = dto.BulkSubmitResult{Index: index, Evaluation: item.Evaluation}
			return nil
		})
	}
	_ = g.Wait()

	return &dto.BulkSubmitResponse{Results: results}, nil
}

// ResetAnswer returns an item to its initial empty-answer, no-evaluation
// state. An evaluation still in flight for the item settles into the void.
func (s *sessionService) ResetAnswer(sessionID string, index int) (*dto.QAItemResponse, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.ResetAnswer(index); err != nil {
		return nil, err
	}
	return itemResponse(session, index)
}

// ToggleEvaluationVisibility flips the visibility flag of an item's
// evaluation; without an evaluation it is a no-op.
func (s *sessionService) ToggleEvaluationVisibility(sessionID string, index int) (*dto.QAItemResponse, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := session.ToggleEvaluationVisibility(index); err != nil {
		return nil, err
	}
	return itemResponse(session, index)
}

func (s *sessionService) lookup(sessionID string) (*domain.InterviewSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.NewSessionNotFoundError(sessionID)
	}
	return session, nil
}

func (s *sessionService) applyDefaults(req *dto.StartSessionRequest) domain.GenerationRequest {
	genReq := domain.GenerationRequest{
		Topic: strings.TrimSpace(req.Topic),
		Tone:  strings.TrimSpace(req.Tone),
		Count: req.Count,
	}
	if genReq.Topic == "" {
		genReq.Topic = s.cfg.Interview.DefaultTopic
	}
	if genReq.Tone == "" {
		genReq.Tone = s.cfg.Interview.DefaultTone
	}
	if genReq.Count < 1 {
		genReq.Count = s.cfg.Interview.DefaultCount
	}
	if genReq.Count > s.cfg.Interview.MaxCount {
		genReq.Count = s.cfg.Interview.MaxCount
	}
	return genReq
}

func sessionResponse(session *domain.InterviewSession) *dto.SessionResponse {
	items := session.Items()
	resp := &dto.SessionResponse{
		ID:     session.ID(),
		Topic:  session.Topic(),
		Tone:   session.Tone(),
		Status: string(session.Status()),
		Items:  make([]dto.QAItemResponse, len(items)),
	}
	for i, item := range items {
		resp.Items[i] = qaItemResponse(i, item)
	}
	return resp
}

func itemResponse(session *domain.InterviewSession, index int) (*dto.QAItemResponse, error) {
	item, err := session.Item(index)
	if err != nil {
		return nil, err
	}
	resp := qaItemResponse(index, item)
	return &resp, nil
}

func qaItemResponse(index int, item domain.QAItem) dto.QAItemResponse {
	resp := dto.QAItemResponse{
		Index:             index,
		Question:          item.Question,
		Answer:            item.Answer,
		Pending:           item.Pending,
		EvaluationVisible: item.EvaluationVisible,
	}
	if item.Evaluation != nil {
		resp.Evaluation = &dto.EvaluationResponse{
			Score:           item.Evaluation.Score,
			Strengths:       item.Evaluation.Strengths,
			Improvements:    item.Evaluation.Improvements,
			SuggestedAnswer: item.Evaluation.SuggestedAnswer,
		}
	}
	return resp
}
