package domain

import "context"

// TextCompleter is the port for the opaque completion backend: one prompt in,
// one text completion out. No streaming, no retries.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// QuestionSetGenerator produces an ordered list of interview questions for a
// topic and tone. A malformed backend response yields an empty list, not an
// error; only transport failures are returned as errors.
type QuestionSetGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) ([]string, error)
}

// AnswerEvaluator scores a single answer. Individual missing fields in the
// backend response are defaulted; a response with no JSON object at all is
// returned as an UNPARSABLE_RESPONSE error.
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, req EvaluationRequest) (*Evaluation, error)
}
