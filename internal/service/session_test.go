package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"interview-byte/internal/config"
	"interview-byte/internal/domain"
	"interview-byte/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testConfig() *config.Config {
	return &config.Config{
		Interview: config.InterviewConfig{
			DefaultTopic:  "General",
			DefaultTone:   "Professional",
			DefaultCount:  5,
			MaxCount:      20,
			EvalCacheTTL:  time.Hour,
			SubmitWorkers: 4,
		},
	}
}

// funcEvaluator is a hand-rolled evaluator mock for tests that need to block
// or count calls across goroutines.
type funcEvaluator struct {
	fn    func(ctx context.Context, req domain.EvaluationRequest) (*domain.Evaluation, error)
	calls atomic.Int32
}

func (f *funcEvaluator) Evaluate(ctx context.Context, req domain.EvaluationRequest) (*domain.Evaluation, error) {
	f.calls.Add(1)
	return f.fn(ctx, req)
}

func startTestSession(t *testing.T, svc SessionService, questions []string) *dto.SessionResponse {
	t.Helper()
	session, err := svc.StartSession(context.Background(), &dto.StartSessionRequest{
		Topic: "Frontend", Tone: "Professional", Count: len(questions),
	})
	assert.NoError(t, err)
	return session
}

func newTestService(generator domain.QuestionSetGenerator, evaluator domain.AnswerEvaluator) SessionService {
	return NewSessionService(generator, evaluator, nil, testConfig())
}

func TestSessionService_StartSession(t *testing.T) {
	generator := new(MockQuestionSetGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).
		Return([]string{"Q1", "Q2"}, nil)

	svc := newTestService(generator, new(MockAnswerEvaluator))
	session, err := svc.StartSession(context.Background(), &dto.StartSessionRequest{
		Topic: "Frontend", Tone: "Professional", Count: 2,
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, string(domain.SessionReady), session.Status)
	assert.Len(t, session.Items, 2)
	assert.Equal(t, "Q1", session.Items[0].Question)
	generator.AssertNumberOfCalls(t, "Generate", 1)
}

func TestSessionService_StartSessionGenerationFailureDegrades(t *testing.T) {
	generator := new(MockQuestionSetGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).
		Return(nil, domain.NewBackendUnavailableError(errors.New("connection refused")))

	svc := newTestService(generator, new(MockAnswerEvaluator))
	session, err := svc.StartSession(context.Background(), &dto.StartSessionRequest{
		Topic: "Frontend", Tone: "Professional", Count: 3,
	})

	assert.NoError(t, err)
	assert.Equal(t, string(domain.SessionReady), session.Status)
	assert.Empty(t, session.Items)
}

func TestSessionService_StartSessionAppliesDefaults(t *testing.T) {
	generator := new(MockQuestionSetGenerator)
	generator.On("Generate", mock.Anything, domain.GenerationRequest{
		Topic: "General", Tone: "Professional", Count: 5,
	}).Return([]string{"Q1"}, nil)

	svc := newTestService(generator, new(MockAnswerEvaluator))
	_, err := svc.StartSession(context.Background(), &dto.StartSessionRequest{})

	assert.NoError(t, err)
	generator.AssertExpectations(t)
}

func TestSessionService_StartSessionClampsCount(t *testing.T) {
	generator := new(MockQuestionSetGenerator)
	generator.On("Generate", mock.Anything, mock.MatchedBy(func(req domain.GenerationRequest) bool {
		return req.Count == 20
	})).Return([]string{"Q1"}, nil)

	svc := newTestService(generator, new(MockAnswerEvaluator))
	_, err := svc.StartSession(context.Background(), &dto.StartSessionRequest{
		Topic: "Frontend", Count: 1000,
	})

	assert.NoError(t, err)
	generator.AssertExpectations(t)
}

func TestSessionService_GetSessionNotFound(t *testing.T) {
	svc := newTestService(new(MockQuestionSetGenerator), new(MockAnswerEvaluator))

	_, err := svc.GetSession("missing")
	var domainErr *domain.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrSessionNotFound, domainErr.Code)
}

func TestSessionService_UpdateAndResetRoundTrip(t *testing.T) {
	generator := new(MockQuestionSetGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return([]string{"Q1"}, nil)
	svc := newTestService(generator, new(MockAnswerEvaluator))
	session := startTestSession(t, svc, []string{"Q1"})

	item, err := svc.UpdateAnswer(session.ID, 0, "x")
	assert.NoError(t, err)
	assert.Equal(t, "x", item.Answer)

	item, err = svc.ResetAnswer(session.ID, 0)
	assert.NoError(t, err)
	assert.Empty(t, item.Answer)
	assert.Nil(t, item.Evaluation)
}

func TestSessionService_SubmitAnswer(t *testing.T) {
	generator := new(MockQuestionSetGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return([]string{"Q1"}, nil)

	evaluator := new(MockAnswerEvaluator)
	evaluator.On("Evaluate", mock.Anything, domain.EvaluationRequest{Question: "Q1", Answer: "my answer"}).
		Return(&domain.Evaluation{Score: 7, Strengths: []string{"clear"}, Improvements: []string{}}, nil)

	svc := newTestService(generator, evaluator)
	session := startTestSession(t, svc, []string{"Q1"})

	_, err := svc.UpdateAnswer(session.ID, 0, "my answer")
	assert.NoError(t, err)

	item, err := svc.SubmitAnswer(context.Background(), session.ID, 0)
	assert.NoError(t, err)
	assert.False(t, item.Pending)
	assert.True(t, item.EvaluationVisible)
	assert.NotNil(t, item.Evaluation)
	assert.Equal(t, float64(7), item.Evaluation.Score)
	evaluator.AssertExpectations(t)
}

func TestSessionService_SubmitEmptyAnswerIsRejectedWithoutBackendCall(t *testing.T) {
	generator := new(MockQuestionSetGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return([]string{"Q1"}, nil)
	evaluator := new(MockAnswerEvaluator)

	svc := newTestService(generator, evaluator)
	session := startTestSession(t, svc, []string{"Q1"})

	_, err := svc.SubmitAnswer(context.Background(), session.ID, 0)
	var domainErr *domain.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrEmptyAnswer, domainErr.Code)
	evaluator.AssertNumberOfCalls(t, "Evaluate", 0)
}

func TestSessionService_DuplicateSubmitMakesOneBackendCall(t *testing.T) {
	generator := new(MockQuestionSetGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return([]string{"Q1"}, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	evaluator := &funcEvaluator{fn: func(ctx context.Context, req domain.EvaluationRequest) (*domain.Evaluation, error) {
		close(entered)
		<-release
		return &domain.Evaluation{Score: 7}, nil
	}}

	svc := newTestService(generator, evaluator)
	session := startTestSession(t, svc, []string{"Q1"})
	_, err := svc.UpdateAnswer(session.ID, 0, "answer")
	assert.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.SubmitAnswer(context.Background(), session.ID, 0)
		assert.NoError(t, err)
	}()

	<-entered

	// Second submission while the first is in flight: rejected, no second call.
	_, err = svc.SubmitAnswer(context.Background(), session.ID, 0)
	var domainErr *domain.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrEvaluationPending, domainErr.Code)

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), evaluator.calls.Load())
	item, err := svc.GetSession(session.ID)
	assert.NoError(t, err)
	assert.NotNil(t, item.Items[0].Evaluation)
}

func TestSessionService_ResetDuringFlightDiscardsStaleResult(t *testing.T) {
	generator := new(MockQuestionSetGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return([]string{"Q1"}, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	evaluator := &funcEvaluator{fn: func(ctx context.Context, req domain.EvaluationRequest) (*domain.Evaluation, error) {
		close(entered)
		<-release
		return &domain.Evaluation{Score: 9}, nil
	}}

	svc := newTestService(generator, evaluator)
	session := startTestSession(t, svc, []string{"Q1"})
	_, err := svc.UpdateAnswer(session.ID, 0, "answer")
	assert.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.SubmitAnswer(context.Background(), session.ID, 0)
	}()

	<-entered

	// Reset while the evaluation is in flight.
	item, err := svc.ResetAnswer(session.ID, 0)
	assert.NoError(t, err)
	assert.Empty(t, item.Answer)

	close(release)
	wg.Wait()

	// The stale result must not resurrect the cleared evaluation.
	snapshot, err := svc.GetSession(session.ID)
	assert.NoError(t, err)
	assert.Nil(t, snapshot.Items[0].Evaluation)
	assert.False(t, snapshot.Items[0].Pending)
}

func TestSessionService_EvaluationFailureKeepsPriorEvaluation(t *testing.T) {
	generator := new(MockQuestionSetGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return([]string{"Q1"}, nil)

	evaluator := new(MockAnswerEvaluator)
	evaluator.On("Evaluate", mock.Anything, domain.EvaluationRequest{Question: "Q1", Answer: "first"}).
		Return(&domain.Evaluation{Score: 8}, nil).Once()
	evaluator.On("Evaluate", mock.Anything, domain.EvaluationRequest{Question: "Q1", Answer: "second"}).
		Return(nil, domain.NewUnparsableResponseError("garbage", nil)).Once()

	svc := newTestService(generator, evaluator)
	session := startTestSession(t, svc, []string{"Q1"})

	_, err := svc.UpdateAnswer(session.ID, 0, "first")
	assert.NoError(t, err)
	_, err = svc.SubmitAnswer(context.Background(), session.ID, 0)
	assert.NoError(t, err)

	_, err = svc.UpdateAnswer(session.ID, 0, "second")
	assert.NoError(t, err)
	_, err = svc.SubmitAnswer(context.Background(), session.ID, 0)
	var domainErr *domain.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrUnparsableResponse, domainErr.Code)

	// Prior evaluation survives; pending cleared, so a retry is possible.
	snapshot, err := svc.GetSession(session.ID)
	assert.NoError(t, err)
	assert.False(t, snapshot.Items[0].Pending)
	assert.NotNil(t, snapshot.Items[0].Evaluation)
	assert.Equal(t, float64(8), snapshot.Items[0].Evaluation.Score)
}

func TestSessionService_SubmitAnswerUsesCache(t *testing.T) {
	generator := new(MockQuestionSetGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return([]string{"Q1"}, nil)
	evaluator := new(MockAnswerEvaluator)

	cached, _ := json.Marshal(&domain.Evaluation{Score: 9, Strengths: []string{}, Improvements: []string{}})
	mockCache := new(MockCache)
	mockCache.On("Get", mock.Anything, mock.Anything).Return(string(cached), nil)

	evalCache := NewEvaluationCacheService(mockCache, time.Hour)
	svc := NewSessionService(generator, evaluator, evalCache, testConfig())
	session := startTestSession(t, svc, []string{"Q1"})

	_, err := svc.UpdateAnswer(session.ID, 0, "answer")
	assert.NoError(t, err)

	item, err := svc.SubmitAnswer(context.Background(), session.ID, 0)
	assert.NoError(t, err)
	assert.NotNil(t, item.Evaluation)
	assert.Equal(t, float64(9), item.Evaluation.Score)
	evaluator.AssertNumberOfCalls(t, "Evaluate", 0)
}

func TestSessionService_ToggleEvaluationVisibility(t *testing.T) {
	generator := new(MockQuestionSetGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return([]string{"Q1"}, nil)
	evaluator := new(MockAnswerEvaluator)
	evaluator.On("Evaluate", mock.Anything, mock.Anything).
		Return(&domain.Evaluation{Score: 7}, nil)

	svc := newTestService(generator, evaluator)
	session := startTestSession(t, svc, []string{"Q1"})

	// Without an evaluation: no-op.
	item, err := svc.ToggleEvaluationVisibility(session.ID, 0)
	assert.NoError(t, err)
	assert.True(t, item.EvaluationVisible)

	_, err = svc.UpdateAnswer(session.ID, 0, "answer")
	assert.NoError(t, err)
	_, err = svc.SubmitAnswer(context.Background(), session.ID, 0)
	assert.NoError(t, err)

	item, err = svc.ToggleEvaluationVisibility(session.ID, 0)
	assert.NoError(t, err)
	assert.False(t, item.EvaluationVisible)
}

func TestSessionService_SubmitAll(t *testing.T) {
	generator := new(MockQuestionSetGenerator)
	generator.On("Generate", mock.Anything, mock.Anything).Return([]string{"Q1", "Q2", "Q3"}, nil)

	evaluator := new(MockAnswerEvaluator)
	evaluator.On("Evaluate", mock.Anything, domain.EvaluationRequest{Question: "Q1", Answer: "a0"}).
		Return(&domain.Evaluation{Score: 6}, nil)
	evaluator.On("Evaluate", mock.Anything, domain.EvaluationRequest{Question: "Q3", Answer: "a2"}).
		Return(nil, domain.NewBackendUnavailableError(errors.New("timeout")))

	svc := newTestService(generator, evaluator)
	session := startTestSession(t, svc, []string{"Q1", "Q2", "Q3"})

	_, err := svc.UpdateAnswer(session.ID, 0, "a0")
	assert.NoError(t, err)
	_, err = svc.UpdateAnswer(session.ID, 2, "a2")
	assert.NoError(t, err)

	results, err := svc.SubmitAll(context.Background(), session.ID)
	assert.NoError(t, err)
	assert.Len(t, results.Results, 2)

	assert.Equal(t, 0, results.Results[0].Index)
	assert.NotNil(t, results.Results[0].Evaluation)
	assert.Empty(t, results.Results[0].Error)

	assert.Equal(t, 2, results.Results[1].Index)
	assert.Nil(t, results.Results[1].Evaluation)
	assert.NotEmpty(t, results.Results[1].Error)

	// The unanswered item was never evaluated.
	evaluator.AssertNumberOfCalls(t, "Evaluate", 2)

	snapshot, err := svc.GetSession(session.ID)
	assert.NoError(t, err)
	assert.NotNil(t, snapshot.Items[0].Evaluation)
	assert.Nil(t, snapshot.Items[1].Evaluation)
	assert.Nil(t, snapshot.Items[2].Evaluation)
}
