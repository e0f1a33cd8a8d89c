package controller

import (
	"errors"

	"note-summary-be/internal/dto"
	"note-summary-be/internal/pkg/serverutils"
	"note-summary-be/internal/service"
	"note-summary-be/pkg/summarizer"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// User-facing notification texts. Raw errors are logged by the services, never shown.
const (
	MsgNoteCreated    = "Note created. Your note has been created successfully."
	MsgNoteUpdated    = "Note updated. Your note has been updated successfully."
	MsgNoteDeleted    = "Note deleted. Your note has been deleted successfully."
	MsgNoteSummarized = "Note summarized successfully."

	MsgCreateFailed    = "Create failed. Failed to create the note. Please try again."
	MsgUpdateFailed    = "Update failed. Failed to update the note. Please try again."
	MsgDeleteFailed    = "Delete failed. Failed to delete the note. Please try again."
	MsgListFailed      = "Failed to load notes. Please try again."
	MsgSummarizeFailed = "Failed to summarize note. Please try again."

	MsgNoteNotFound    = "Note not found"
	MsgEmptyUpdate     = "At least one of title, content or summary is required"
	MsgContentRequired = "Content is required"
	MsgInvalidBody     = "Invalid request body"
	MsgUnauthorized    = "Unauthorized"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Summarize(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService      service.INoteService
	summarizeService service.ISummarizeService
	requireAuth      fiber.Handler
}

func NewNoteController(
	noteService service.INoteService,
	summarizeService service.ISummarizeService,
	requireAuth fiber.Handler,
) INoteController {
	return &noteController{
		noteService:      noteService,
		summarizeService: summarizeService,
		requireAuth:      requireAuth,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notes", c.requireAuth)
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Get("/:id", c.Show)
	h.Patch("/:id", c.Update)
	h.Delete("/:id", c.Delete)
	h.Post("/:id/summarize", c.Summarize)
}

func currentUserId(ctx *fiber.Ctx) uuid.UUID {
	if s, ok := serverutils.CurrentSession(ctx); ok {
		return s.UserId
	}
	return uuid.Nil
}

// noteId returns uuid.Nil for malformed ids, which then behave like unknown notes.
func noteId(ctx *fiber.Ctx) uuid.UUID {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func failure(ctx *fiber.Ctx, err error, message string) error {
	if errors.Is(err, service.ErrUnauthorized) {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, MsgUnauthorized))
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, message))
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	res, err := c.noteService.List(ctx.UserContext(), currentUserId(ctx))
	if err != nil {
		return failure(ctx, err, MsgListFailed)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list notes", res))
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, MsgInvalidBody))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Create(ctx.UserContext(), currentUserId(ctx), &req)
	if err != nil {
		return failure(ctx, err, MsgCreateFailed)
	}

	return ctx.JSON(serverutils.SuccessResponse(MsgNoteCreated, res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	res, err := c.noteService.Show(ctx.UserContext(), currentUserId(ctx), noteId(ctx))
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, MsgNoteNotFound))
		}
		return failure(ctx, err, MsgListFailed)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, MsgInvalidBody))
	}
	req.Id = noteId(ctx)

	if req.IsEmpty() {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, MsgEmptyUpdate))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Update(ctx.UserContext(), currentUserId(ctx), &req)
	if err != nil {
		return failure(ctx, err, MsgUpdateFailed)
	}

	return ctx.JSON(serverutils.SuccessResponse(MsgNoteUpdated, res))
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	if err := c.noteService.Delete(ctx.UserContext(), currentUserId(ctx), noteId(ctx)); err != nil {
		return failure(ctx, err, MsgDeleteFailed)
	}

	return ctx.JSON(serverutils.SuccessResponse[any](MsgNoteDeleted, nil))
}

func (c *noteController) Summarize(ctx *fiber.Ctx) error {
	var req dto.SummarizeNoteRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, MsgInvalidBody))
		}
	}

	res, err := c.summarizeService.SummarizeNote(ctx.UserContext(), currentUserId(ctx), noteId(ctx), &req)
	if err != nil {
		if errors.Is(err, summarizer.ErrContentRequired) {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, MsgContentRequired))
		}
		return failure(ctx, err, MsgSummarizeFailed)
	}

	return ctx.JSON(serverutils.SuccessResponse(MsgNoteSummarized, res))
}
