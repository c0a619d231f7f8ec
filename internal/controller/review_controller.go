package controller

import (
	"carematch-be/internal/dto"
	"carematch-be/internal/pkg/apperror"
	"carematch-be/internal/pkg/serverutils"
	"carematch-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IReviewController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	GetForUser(ctx *fiber.Ctx) error
}

type reviewController struct {
	service service.IReviewService
	auth    fiber.Handler
}

func NewReviewController(service service.IReviewService, auth fiber.Handler) IReviewController {
	return &reviewController{service: service, auth: auth}
}

func (c *reviewController) RegisterRoutes(r fiber.Router) {
	r.Post("/reviews", c.auth, c.Submit)
	r.Put("/reviews/:id", c.auth, c.Update)
	r.Delete("/reviews/:id", c.auth, c.Delete)
	r.Get("/users/:id/reviews", c.auth, c.GetForUser)
}

func (c *reviewController) Submit(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}

	var req dto.SubmitReviewRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SubmitReview(ctx.UserContext(), req.MatchRequestId, principal.UserId, req.Rating, req.Comment)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Review submitted", res))
}

func (c *reviewController) Update(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateReviewRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateReview(ctx.UserContext(), id, principal.UserId, req.Rating, req.Comment)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Review updated", res))
}

func (c *reviewController) Delete(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.DeleteReview(ctx.UserContext(), id, principal); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Review deleted", nil))
}

func (c *reviewController) GetForUser(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamID(ctx, "id")
	if err != nil {
		return err
	}

	var query dto.PaginationQuery
	if err := ctx.QueryParser(&query); err != nil {
		return apperror.Validation("invalid query parameters")
	}

	res, err := c.service.ListReviewsForUser(ctx.UserContext(), id, &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get reviews", res))
}
