package controller

import (
	"bytes"

	"carematch-be/internal/dto"
	"carematch-be/internal/pkg/apperror"
	"carematch-be/internal/pkg/serverutils"
	"carematch-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITransactionController interface {
	RegisterRoutes(r fiber.Router)
	Initiate(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Refund(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type transactionController struct {
	service service.ITransactionService
	auth    fiber.Handler
}

func NewTransactionController(service service.ITransactionService, auth fiber.Handler) ITransactionController {
	return &transactionController{service: service, auth: auth}
}

func (c *transactionController) RegisterRoutes(r fiber.Router) {
	// Called by the payment gateway, not by users.
	r.Post("/payments/callback", c.Callback)

	h := r.Group("/transactions")
	h.Use(c.auth)
	h.Post("", c.Initiate)
	h.Get("", c.GetAll)
	h.Get(":id", c.Show)
	h.Post(":id/refund", c.Refund)
}

func (c *transactionController) Initiate(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}

	var req dto.InitiatePaymentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.InitiatePayment(ctx.UserContext(), req.MatchRequestId, principal.UserId, req.Amount, req.Currency)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Payment initiated", res))
}

func (c *transactionController) GetAll(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}

	var query dto.ListTransactionsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return apperror.Validation("invalid query parameters")
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.service.ListTransactions(ctx.UserContext(), principal, &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get transactions", res))
}

func (c *transactionController) Show(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.GetTransaction(ctx.UserContext(), id, principal)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show transaction", res))
}

func (c *transactionController) Refund(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Refund(ctx.UserContext(), id, principal)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Transaction refunded", res))
}

// Callback always acknowledges with 200 so the gateway stops retrying;
// the service logs anything it could not reconcile.
func (c *transactionController) Callback(ctx *fiber.Ctx) error {
	raw := bytes.Clone(ctx.Body())
	_ = c.service.HandleGatewayCallback(ctx.UserContext(), raw)
	return ctx.JSON(serverutils.SuccessResponse[any]("Callback received", nil))
}
