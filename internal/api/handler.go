package api

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/petasbytes/expense-agent/internal/runner"
	"github.com/petasbytes/expense-agent/memory"
)

// Assistant answers one question.
type Assistant interface {
	Answer(ctx context.Context, question string) (string, error)
}

// SessionAssistant answers every question inside one shared session, so
// follow-up questions from any client see the same history.
type SessionAssistant struct {
	Runner  *runner.Runner
	Session *memory.Session
}

func (a SessionAssistant) Answer(ctx context.Context, question string) (string, error) {
	return a.Runner.Ask(ctx, a.Session, question)
}

type AskRequest struct {
	Question string `json:"question"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

type Handler struct {
	assistant Assistant
	logger    zerolog.Logger
}

func NewHandler(assistant Assistant, logger zerolog.Logger) *Handler {
	return &Handler{assistant: assistant, logger: logger}
}

// AskFinanceAssistant handles POST /api/ask_finance_assistant.
func (h *Handler) AskFinanceAssistant(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question is required",
		})
	}

	answer, err := h.assistant.Answer(c.UserContext(), req.Question)
	if err != nil {
		if errors.Is(err, runner.ErrEmptyQuestion) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Question is required",
			})
		}
		h.logger.Error().Err(err).Msg("failed to answer question")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "An error occurred while processing your request",
		})
	}
	return c.JSON(AskResponse{Answer: answer})
}
