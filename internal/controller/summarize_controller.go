package controller

import (
	"encoding/json"
	"errors"
	"strings"

	"note-summary-be/internal/dto"
	"note-summary-be/internal/pkg/serverutils"
	"note-summary-be/internal/service"
	"note-summary-be/pkg/summarizer"

	"github.com/gofiber/fiber/v2"
)

// ISummarizeController serves the stateless summarize endpoint. Its bodies are
// {summary} or {error}, not the usual envelope.
type ISummarizeController interface {
	RegisterRoutes(r fiber.Router)
	Summarize(ctx *fiber.Ctx) error
}

type summarizeController struct {
	service  service.ISummarizeService
	sessions serverutils.SessionValidator
}

func NewSummarizeController(service service.ISummarizeService, sessions serverutils.SessionValidator) ISummarizeController {
	return &summarizeController{service: service, sessions: sessions}
}

func (c *summarizeController) RegisterRoutes(r fiber.Router) {
	r.Post("/summarize", c.Summarize)
}

func summarizeError(ctx *fiber.Ctx, status int, message string) error {
	return ctx.Status(status).JSON(dto.SummarizeErrorResponse{Error: message})
}

func (c *summarizeController) Summarize(ctx *fiber.Ctx) error {
	if _, err := c.sessions.Validate(ctx.UserContext(), serverutils.BearerToken(ctx)); err != nil {
		return summarizeError(ctx, fiber.StatusUnauthorized, "Unauthorized")
	}

	var body struct {
		Content interface{} `json:"content"`
	}
	if err := json.Unmarshal(ctx.Body(), &body); err != nil {
		return summarizeError(ctx, fiber.StatusInternalServerError, "Failed to summarize content")
	}

	content, ok := body.Content.(string)
	if !ok || strings.TrimSpace(content) == "" {
		return summarizeError(ctx, fiber.StatusBadRequest, "Content is required")
	}

	summary, err := c.service.Summarize(ctx.UserContext(), content)
	if err != nil {
		if errors.Is(err, summarizer.ErrContentRequired) {
			return summarizeError(ctx, fiber.StatusBadRequest, "Content is required")
		}
		return summarizeError(ctx, fiber.StatusInternalServerError, "Failed to summarize content")
	}

	return ctx.JSON(dto.SummarizeResponse{Summary: summary})
}
