package dto

// GenerateQuestionsRequest is the request body for the stateless generate endpoint
// @Description Request body for generating interview questions
type GenerateQuestionsRequest struct {
	Topic string `json:"topic"`
	Tone  string `json:"tone"`
	Count int    `json:"count"`
}

// GenerateQuestionsResponse carries the generated question list.
// The list may be shorter than requested, including empty, when the backend
// returned malformed output.
type GenerateQuestionsResponse struct {
	Questions []string `json:"questions"`
}

// EvaluateAnswerRequest is the request body for the stateless evaluate endpoint
// @Description Request body for evaluating a single answer
type EvaluateAnswerRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// EvaluationResponse represents an answer evaluation in the API response
type EvaluationResponse struct {
	Score           float64  `json:"score"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	SuggestedAnswer string   `json:"suggestedAnswer"`
}

// StartSessionRequest is the request body for starting an interview session.
// Omitted fields fall back to the configured defaults.
type StartSessionRequest struct {
	Topic string `json:"topic"`
	Tone  string `json:"tone"`
	Count int    `json:"count"`
}

// QAItemResponse represents one question/answer slot in the API response
type QAItemResponse struct {
	Index             int                 `json:"index"`
	Question          string              `json:"question"`
	Answer            string              `json:"answer"`
	Pending           bool                `json:"pending"`
	EvaluationVisible bool                `json:"evaluation_visible"`
	Evaluation        *EvaluationResponse `json:"evaluation,omitempty"`
}

// SessionResponse represents a full session snapshot in the API response
type SessionResponse struct {
	ID     string           `json:"id"`
	Topic  string           `json:"topic"`
	Tone   string           `json:"tone"`
	Status string           `json:"status"`
	Items  []QAItemResponse `json:"items"`
}

// UpdateAnswerRequest is the request body for editing an item's answer
type UpdateAnswerRequest struct {
	Answer string `json:"answer"`
}

// BulkSubmitResult carries the outcome for one item of a bulk submit.
// Exactly one of Evaluation and Error is set.
type BulkSubmitResult struct {
	Index      int                 `json:"index"`
	Evaluation *EvaluationResponse `json:"evaluation,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// BulkSubmitResponse lists per-item outcomes of a bulk submit in item order
type BulkSubmitResponse struct {
	Results []BulkSubmitResult `json:"results"`
}
