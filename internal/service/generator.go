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

// questionSetGenerator implements domain.QuestionSetGenerator
type questionSetGenerator struct {
	completer domain.TextCompleter
}

// NewQuestionSetGenerator creates a generator backed by the given completion service.
func NewQuestionSetGenerator(completer domain.TextCompleter) domain.QuestionSetGenerator {
	return &questionSetGenerator{completer: completer}
}

// Generate implements domain.QuestionSetGenerator. The backend is invoked
// exactly once; transport failures surface as BACKEND_UNAVAILABLE, while
// malformed output degrades to an empty question list so the session can
// still reach a usable state.
func (g *questionSetGenerator) Generate(ctx context.Context, req domain.GenerationRequest) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	l := logger.Get()
	l.Info("Generating interview questions",
		zap.String("topic", req.Topic),
		zap.String("tone", req.Tone),
		zap.Int("count", req.Count))

	rawResponse, err := g.completer.Complete(ctx, buildGenerationPrompt(req))
	if err != nil {
		l.Error("Completion call failed during question generation", zap.Error(err))
		return nil, domain.NewBackendUnavailableError(err)
	}

	l.Debug("Raw generation response received", zap.String("raw_response", rawResponse))

	payload, err := extract.Object(rawResponse)
	if err != nil {
		l.Warn("No JSON object in generation response, degrading to empty question list",
			zap.Error(err),
			zap.String("raw_response", rawResponse))
		return []string{}, nil
	}

	var parsed struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		l.Warn("Generation payload has no usable questions field, degrading to empty question list",
			zap.Error(err),
			zap.String("extracted_json", string(payload)))
		return []string{}, nil
	}
	if parsed.Questions == nil {
		l.Warn("Generation payload is missing the questions field, degrading to empty question list",
			zap.String("extracted_json", string(payload)))
		return []string{}, nil
	}

	if len(parsed.Questions) != req.Count {
		// Best-effort contract: the backend may return fewer or more.
		l.Warn("Backend returned a different number of questions than requested",
			zap.Int("requested", req.Count),
			zap.Int("returned", len(parsed.Questions)))
	}

	l.Info("Successfully generated questions", zap.Int("count", len(parsed.Questions)))
	return parsed.Questions, nil
}

func buildGenerationPrompt(req domain.GenerationRequest) string {
	return fmt.Sprintf(`You are an interviewer.

Generate %d interview questions only, make them generic and do not assume the interviewee has prior experience.

Topic: %s
Tone: %s

Rules:
- Return exactly %d questions
- No explanations
- Respond ONLY in JSON format as:
{
  "questions": ["Question 1", "Question 2", "..."]
}
`, req.Count, req.Topic, req.Tone, req.Count)
}
