package domain

import "strings"

// GenerationRequest describes one question-set generation. Tone is free text;
// the prompt is the only place it is interpreted.
type GenerationRequest struct {
	Topic string
	Tone  string
	Count int
}

// Validate checks the request invariants (non-empty topic, count >= 1).
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return NewInvalidInputError("Topic must not be empty")
	}
	if r.Count < 1 {
		return NewInvalidInputError("Count must be at least 1")
	}
	return nil
}

// EvaluationRequest describes one answer evaluation. The answer must be
// non-empty after trimming; the session layer enforces this before calling
// the evaluator.
type EvaluationRequest struct {
	Question string
	Answer   string
}

// Evaluation is the structured verdict for a single answer. All fields are
// always present after validation; missing or malformed backend fields are
// defaulted, never rejected.
type Evaluation struct {
	Score           float64  `json:"score"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	SuggestedAnswer string   `json:"suggestedAnswer"`
}

// QAItem is one question/answer slot of a session. Question is immutable once
// set; the rest is driven by user actions and evaluation settlements.
type QAItem struct {
	Question          string
	Answer            string
	Evaluation        *Evaluation
	Pending           bool
	EvaluationVisible bool
}
