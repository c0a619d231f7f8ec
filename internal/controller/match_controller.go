package controller

import (
	"carematch-be/internal/dto"
	"carematch-be/internal/entity"
	"carematch-be/internal/pkg/apperror"
	"carematch-be/internal/pkg/serverutils"
	"carematch-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMatchController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Respond(ctx *fiber.Ctx) error
	Complete(ctx *fiber.Ctx) error
}

type matchController struct {
	service  service.IMatchService
	profiles service.IProfileResolver
	auth     fiber.Handler
}

func NewMatchController(service service.IMatchService, profiles service.IProfileResolver, auth fiber.Handler) IMatchController {
	return &matchController{service: service, profiles: profiles, auth: auth}
}

func (c *matchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/match-requests")
	h.Use(c.auth)
	h.Post("", c.Create)
	h.Get("", c.GetAll)
	h.Get(":id", c.Show)
	h.Post(":id/respond", c.Respond)
	h.Post(":id/complete", c.Complete)
}

func (c *matchController) Create(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateMatchRequestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	familyProfileId, err := c.profiles.FamilyProfileID(ctx.UserContext(), principal)
	if err != nil {
		return err
	}

	res, err := c.service.CreateMatchRequest(ctx.UserContext(), familyProfileId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Match request created", res))
}

func (c *matchController) GetAll(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}

	var query dto.ListMatchRequestsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return apperror.Validation("invalid query parameters")
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.service.ListMatchRequests(ctx.UserContext(), principal, &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get match requests", res))
}

func (c *matchController) Show(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.GetMatchRequest(ctx.UserContext(), id, principal)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show match request", res))
}

func (c *matchController) Respond(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	if principal.Role != entity.UserRoleCaregiver {
		return apperror.Forbidden("only caregivers can respond to match requests")
	}
	id, err := serverutils.ParamID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.RespondMatchRequestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RespondToMatchRequest(ctx.UserContext(), id, principal.UserId, entity.MatchDecision(req.Decision))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Match request "+res.Status, res))
}

func (c *matchController) Complete(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.CompleteMatch(ctx.UserContext(), id, principal.UserId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Match completed", res))
}
