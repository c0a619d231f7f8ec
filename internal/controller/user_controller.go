package controller

import (
	"carematch-be/internal/pkg/serverutils"
	"carematch-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	Delete(ctx *fiber.Ctx) error
}

type userController struct {
	service service.IAccountService
	auth    fiber.Handler
}

func NewUserController(service service.IAccountService, auth fiber.Handler) IUserController {
	return &userController{service: service, auth: auth}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	r.Delete("/users/:id", c.auth, c.Delete)
}

func (c *userController) Delete(ctx *fiber.Ctx) error {
	principal, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParamID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.DeleteUser(ctx.UserContext(), principal, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("User deleted", nil))
}
