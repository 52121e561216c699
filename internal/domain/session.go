package domain

import (
	"strings"
	"sync"
)

// SessionStatus represents the lifecycle state of an InterviewSession
type SessionStatus string

const (
	// SessionInitializing is the state before the question set has arrived.
	SessionInitializing SessionStatus = "INITIALIZING"
	// SessionReady is the terminal state; it persists for the session lifetime.
	SessionReady SessionStatus = "READY"
)

// InterviewSession holds the ordered question/answer/evaluation items of one
// mock-interview run. The index is the sole identity of an item; item count
// and question text never change after Materialize.
//
// Handlers run on multiple goroutines, so every transition takes the session
// lock. Evaluation settlements are tagged with a per-item epoch captured at
// submission time; ResetAnswer bumps the epoch so a stale in-flight result is
// discarded on arrival instead of resurrecting a cleared evaluation.
type InterviewSession struct {
	mu     sync.Mutex
	id     string
	topic  string
	tone   string
	status SessionStatus
	items  []sessionItem
}

type sessionItem struct {
	QAItem
	epoch uint64
}

// NewInterviewSession creates a session in the Initializing state.
func NewInterviewSession(id, topic, tone string) *InterviewSession {
	return &InterviewSession{
		id:     id,
		topic:  topic,
		tone:   tone,
		status: SessionInitializing,
	}
}

func (s *InterviewSession) ID() string    { return s.id }
func (s *InterviewSession) Topic() string { return s.topic }
func (s *InterviewSession) Tone() string  { return s.tone }

func (s *InterviewSession) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Materialize transitions Initializing -> Ready, creating one empty item per
// question. It is called exactly once per session; a failed or empty
// generation materializes zero items, which is equivalent from the session's
// perspective.
func (s *InterviewSession) Materialize(questions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == SessionReady {
		return
	}
	s.items = make([]sessionItem, len(questions))
	for i, q := range questions {
		s.items[i] = sessionItem{QAItem: QAItem{Question: q, EvaluationVisible: true}}
	}
	s.status = SessionReady
}

// UpdateAnswer sets the answer text of one item. Content is not validated.
func (s *InterviewSession) UpdateAnswer(index int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.items[index].Answer = text
	return nil
}

// BeginEvaluation guards a submission and marks the item pending. It returns
// the request to evaluate together with the epoch ticket the settlement must
// present. EMPTY_ANSWER and EVALUATION_PENDING signal that no backend call
// must be made; neither mutates the session.
func (s *InterviewSession) BeginEvaluation(index int) (EvaluationRequest, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return EvaluationRequest{}, 0, err
	}
	item := &s.items[index]
	if strings.TrimSpace(item.Answer) == "" {
		return EvaluationRequest{}, 0, NewEmptyAnswerError(index)
	}
	if item.Pending {
		return EvaluationRequest{}, 0, NewEvaluationPendingError(index)
	}
	item.Pending = true
	return EvaluationRequest{Question: item.Question, Answer: item.Answer}, item.epoch, nil
}

// SettleEvaluation completes an in-flight evaluation. Pending always clears:
// the pending guard guarantees the settling call is the only outstanding one
// for this item. The evaluation itself is applied only when eval is non-nil
// and the epoch ticket is still current, so a result that raced a reset is
// dropped. Returns whether the evaluation was applied.
func (s *InterviewSession) SettleEvaluation(index int, epoch uint64, eval *Evaluation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return false, err
	}
	item := &s.items[index]
	item.Pending = false
	if eval == nil || item.epoch != epoch {
		return false, nil
	}
	item.Evaluation = eval
	item.EvaluationVisible = true
	return true, nil
}

// ResetAnswer clears the answer and evaluation of one item, regardless of
// pending state. The epoch bump invalidates any in-flight evaluation ticket.
func (s *InterviewSession) ResetAnswer(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return err
	}
	item := &s.items[index]
	item.Answer = ""
	item.Evaluation = nil
	item.epoch++
	return nil
}

// ToggleEvaluationVisibility flips the visibility flag; it is a no-op while
// no evaluation is present. Returns the resulting visibility.
func (s *InterviewSession) ToggleEvaluationVisibility(index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return false, err
	}
	item := &s.items[index]
	if item.Evaluation == nil {
		return item.EvaluationVisible, nil
	}
	item.EvaluationVisible = !item.EvaluationVisible
	return item.EvaluationVisible, nil
}

// Item returns a copy of one item.
func (s *InterviewSession) Item(index int) (QAItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return QAItem{}, err
	}
	return copyItem(&s.items[index]), nil
}

// Items returns a copy of all items in generation order.
func (s *InterviewSession) Items() []QAItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]QAItem, len(s.items))
	for i := range s.items {
		out[i] = copyItem(&s.items[i])
	}
	return out
}

// SubmittableIndexes lists the items a bulk submit would evaluate: non-empty
// answer and no evaluation in flight.
func (s *InterviewSession) SubmittableIndexes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for i := range s.items {
		if strings.TrimSpace(s.items[i].Answer) != "" && !s.items[i].Pending {
			out = append(out, i)
		}
	}
	return out
}

func (s *InterviewSession) checkIndex(index int) error {
	if s.status != SessionReady {
		return NewInvalidInputError("Session is not ready")
	}
	if index < 0 || index >= len(s.items) {
		return NewItemOutOfRangeError(index, len(s.items))
	}
	return nil
}

func copyItem(item *sessionItem) QAItem {
	out := item.QAItem
	if item.Evaluation != nil {
		eval := *item.Evaluation
		out.Evaluation = &eval
	}
	return out
}
