package handler

import (
	"strconv"

	"interview-byte/internal/domain"
	"interview-byte/internal/dto"
	"interview-byte/internal/logger"
	"interview-byte/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// InterviewHandler handles interview-related HTTP requests
type InterviewHandler struct {
	sessions  service.SessionService
	generator domain.QuestionSetGenerator
	evaluator domain.AnswerEvaluator
}

// NewInterviewHandler creates a new InterviewHandler instance
func NewInterviewHandler(
	sessions service.SessionService,
	generator domain.QuestionSetGenerator,
	evaluator domain.AnswerEvaluator,
) *InterviewHandler {
	return &InterviewHandler{
		sessions:  sessions,
		generator: generator,
		evaluator: evaluator,
	}
}

// RegisterRoutes mounts all interview routes under the given router
func (h *InterviewHandler) RegisterRoutes(api fiber.Router) {
	api.Post("/generate", h.GenerateQuestions)
	api.Post("/evaluate", h.EvaluateAnswer)

	sessions := api.Group("/sessions")
	sessions.Post("/", h.StartSession)
	sessions.Get("/:id", h.GetSession)
	sessions.Post("/:id/submit", h.SubmitAll)
	sessions.Put("/:id/items/:index/answer", h.UpdateAnswer)
	sessions.Post("/:id/items/:index/submit", h.SubmitAnswer)
	sessions.Post("/:id/items/:index/reset", h.ResetAnswer)
	sessions.Post("/:id/items/:index/visibility", h.ToggleEvaluationVisibility)
}

// GenerateQuestions godoc
// @Summary Generate interview questions
// @Description Generates a list of interview questions for a topic and tone. Malformed backend output yields an empty list.
// @Tags interview
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuestionsRequest true "Generation request"
// @Success 200 {object} dto.GenerateQuestionsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /generate [post]
func (h *InterviewHandler) GenerateQuestions(c *fiber.Ctx) error {
	var req dto.GenerateQuestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	questions, err := h.generator.Generate(c.Context(), domain.GenerationRequest{
		Topic: req.Topic,
		Tone:  req.Tone,
		Count: req.Count,
	})
	if err != nil {
		return err
	}

	return c.JSON(dto.GenerateQuestionsResponse{Questions: questions})
}

// EvaluateAnswer godoc
// @Summary Evaluate a single answer
// @Description Scores one answer against its question without a session.
// @Tags interview
// @Accept json
// @Produce json
// @Param request body dto.EvaluateAnswerRequest true "Evaluation request"
// @Success 200 {object} dto.EvaluationResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /evaluate [post]
func (h *InterviewHandler) EvaluateAnswer(c *fiber.Ctx) error {
	var req dto.EvaluateAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if req.Question == "" {
		return domain.NewInvalidInputError("Question must not be empty")
	}

	evaluation, err := h.evaluator.Evaluate(c.Context(), domain.EvaluationRequest{
		Question: req.Question,
		Answer:   req.Answer,
	})
	if err != nil {
		return err
	}

	return c.JSON(dto.EvaluationResponse{
		Score:           evaluation.Score,
		Strengths:       evaluation.Strengths,
		Improvements:    evaluation.Improvements,
		SuggestedAnswer: evaluation.SuggestedAnswer,
	})
}

// StartSession godoc
// @Summary Start an interview session
// @Description Creates a session and generates its question set. A failed generation yields a session with zero items.
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body dto.StartSessionRequest true "Session request"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /sessions [post]
func (h *InterviewHandler) StartSession(c *fiber.Ctx) error {
	var req dto.StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	session, err := h.sessions.StartSession(c.Context(), &req)
	if err != nil {
		return err
	}

	logger.Get().Info("Session created", zap.String("session_id", session.ID))
	return c.Status(fiber.StatusCreated).JSON(session)
}

// GetSession godoc
// @Summary Get a session snapshot
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id} [get]
func (h *InterviewHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.sessions.GetSession(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(session)
}

// UpdateAnswer godoc
// @Summary Update an item's answer text
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param index path int true "Item index"
// @Param request body dto.UpdateAnswerRequest true "Answer"
// @Success 200 {object} dto.QAItemResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id}/items/{index}/answer [put]
func (h *InterviewHandler) UpdateAnswer(c *fiber.Ctx) error {
	index, err := itemIndex(c)
	if err != nil {
		return err
	}

	var req dto.UpdateAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	item, err := h.sessions.UpdateAnswer(c.Params("id"), index, req.Answer)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// SubmitAnswer godoc
// @Summary Submit an item's answer for evaluation
// @Description Evaluates the current answer. Duplicate submissions while one is in flight get 409.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param index path int true "Item index"
// @Success 200 {object} dto.QAItemResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /sessions/{id}/items/{index}/submit [post]
func (h *InterviewHandler) SubmitAnswer(c *fiber.Ctx) error {
	index, err := itemIndex(c)
	if err != nil {
		return err
	}

	item, err := h.sessions.SubmitAnswer(c.Context(), c.Params("id"), index)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// SubmitAll godoc
// @Summary Evaluate all answered items
// @Description Evaluates every item with a non-empty answer and no evaluation in flight. Per-item failures are reported in the result list.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.BulkSubmitResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id}/submit [post]
func (h *InterviewHandler) SubmitAll(c *fiber.Ctx) error {
	results, err := h.sessions.SubmitAll(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(results)
}

// ResetAnswer godoc
// @Summary Reset an item to its initial state
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param index path int true "Item index"
// @Success 200 {object} dto.QAItemResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id}/items/{index}/reset [post]
func (h *InterviewHandler) ResetAnswer(c *fiber.Ctx) error {
	index, err := itemIndex(c)
	if err != nil {
		return err
	}

	item, err := h.sessions.ResetAnswer(c.Params("id"), index)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// ToggleEvaluationVisibility godoc
// @Summary Toggle visibility of an item's evaluation
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param index path int true "Item index"
// @Success 200 {object} dto.QAItemResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id}/items/{index}/visibility [post]
func (h *InterviewHandler) ToggleEvaluationVisibility(c *fiber.Ctx) error {
	index, err := itemIndex(c)
	if err != nil {
		return err
	}

	item, err := h.sessions.ToggleEvaluationVisibility(c.Params("id"), index)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func itemIndex(c *fiber.Ctx) (int, error) {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return 0, domain.NewInvalidInputError("Item index must be an integer")
	}
	return index, nil
}
