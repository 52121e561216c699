package service

import (
	"context"
	"encoding/json"
	"fmt"

	"interview-byte/internal/domain"
	"interview-byte/internal/extract"
	"interview-byte/internal/logger"

	"go.uber.org/zap"
)

// answerEvaluator implements domain.AnswerEvaluator
type answerEvaluator struct {
	completer domain.TextCompleter
}

// NewAnswerEvaluator creates an evaluator backed by the given completion service.
func NewAnswerEvaluator(completer domain.TextCompleter) domain.AnswerEvaluator {
	return &answerEvaluator{completer: completer}
}

// Evaluate implements domain.AnswerEvaluator. The backend is invoked exactly
// once. A response with no extractable JSON object is a hard
// UNPARSABLE_RESPONSE failure carrying the raw text; a defaulted score of 0
// with no diagnostics would be misleading. Individual missing or wrong-typed
// fields are defaulted instead, so partial output never fails the call.
func (e *answerEvaluator) Evaluate(ctx context.Context, req domain.EvaluationRequest) (*domain.Evaluation, error) {
	l := logger.Get()
	l.Info("Evaluating answer with LLM", zap.String("question", req.Question))

	rawResponse, err := e.completer.Complete(ctx, buildEvaluationPrompt(req))
	if err != nil {
		l.Error("Completion call failed during answer evaluation", zap.Error(err))
		return nil, domain.NewBackendUnavailableError(err)
	}

	l.Debug("Raw evaluation response received", zap.String("raw_response", rawResponse))

	payload, err := extract.Object(rawResponse)
	if err != nil {
		l.Error("Could not extract a JSON object from evaluation response",
			zap.Error(err),
			zap.String("raw_response", rawResponse))
		return nil, domain.NewUnparsableResponseError(rawResponse, err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		// extract.Object already parse-checked the payload; this is unreachable
		// in practice but kept as a guard.
		return nil, domain.NewUnparsableResponseError(rawResponse, err)
	}

	evaluation := &domain.Evaluation{
		Strengths:    []string{},
		Improvements: []string{},
	}
	if score, ok := fields["score"].(float64); ok {
		evaluation.Score = score
	}
	evaluation.Strengths = toStringSlice(fields["strengths"])
	evaluation.Improvements = toStringSlice(fields["improvements"])
	if suggested, ok := fields["suggestedAnswer"].(string); ok {
		evaluation.SuggestedAnswer = suggested
	}

	l.Info("Successfully parsed evaluation", zap.Float64("score", evaluation.Score))
	return evaluation, nil
}

// toStringSlice coerces a decoded JSON value into a string slice, dropping
// non-string elements. Anything that is not an array defaults to empty.
func toStringSlice(value interface{}) []string {
	out := []string{}
	items, ok := value.([]interface{})
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func buildEvaluationPrompt(req domain.EvaluationRequest) string {
	return fmt.Sprintf(`You are an expert interviewer and evaluator.

Evaluate the following interview answer carefully and provide a structured JSON response.

Question: "%s"
Answer: "%s"

Instructions:
- Provide a "score" from 3 to 10.
- List "strengths" as an array of key points, also state if there is none.
- List "improvements" as an array of actionable suggestions.
- Give a "suggestedAnswer" that demonstrates a strong, concise, and clear response.

Respond ONLY in JSON format, exactly like this:
{
  "score": number,
  "strengths": ["", ""],
  "improvements": ["", ""],
  "suggestedAnswer": ""
}
`, req.Question, req.Answer)
}
