package controller

import (
	"carematch-be/internal/dto"
	"carematch-be/internal/pkg/apperror"
	"carematch-be/internal/pkg/serverutils"
	"carematch-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	MarkRead(ctx *fiber.Ctx) error
	Unread(ctx *fiber.Ctx) error
}

type conversationController struct {
	service service.IMessagingService
	auth    fiber.Handler
}

func NewConversationController(service service.IMessagingService, auth fiber.Handler) IConversationController {
	return &conversationController{service: service, auth: auth}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversations")
	h.Use(c.auth)
	h.Post("", c.Create)
	h.Get("", c.GetAll)
	h.Get(":id/messages", c.GetMessages)
	h.Post(":id/messages", c.SendMessage)
	h.Post(":id/read", c.MarkRead)
	h.Get(":id/unread", c.Unread)
}

func (c *conversationController) Create(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, created, err := c.service.CreateDirectConversation(ctx.UserContext(), principal.UserId, req.ParticipantId)
	if err != nil {
		return err
	}

	if !created {
		return ctx.JSON(serverutils.SuccessResponse("Conversation already exists", res))
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Conversation created", res))
}

func (c *conversationController) GetAll(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}

	var query dto.PaginationQuery
	if err := ctx.QueryParser(&query); err != nil {
		return apperror.Validation("invalid query parameters")
	}

	res, err := c.service.ListConversations(ctx.UserContext(), principal.UserId, &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get conversations", res))
}

func (c *conversationController) GetMessages(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamID(ctx, "id")
	if err != nil {
		return err
	}

	var query dto.PaginationQuery
	if err := ctx.QueryParser(&query); err != nil {
		return apperror.Validation("invalid query parameters")
	}

	res, err := c.service.ListMessages(ctx.UserContext(), id, principal.UserId, &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get messages", res))
}

func (c *conversationController) SendMessage(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.UserContext(), id, principal.UserId, req.Content)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Message sent", res))
}

func (c *conversationController) MarkRead(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamID(ctx, "id")
	if err != nil {
		return err
	}

	// Body is optional.
	var req dto.MarkReadRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return apperror.Validation("invalid request body")
		}
	}

	res, err := c.service.MarkRead(ctx.UserContext(), id, principal.UserId, req.Upto)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Conversation marked as read", res))
}

func (c *conversationController) Unread(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.UnreadCount(ctx.UserContext(), id, principal.UserId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get unread count", res))
}
