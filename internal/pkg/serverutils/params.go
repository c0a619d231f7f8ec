package serverutils

import (
	"strconv"

	"carematch-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ParamID reads a positive integer path parameter.
func ParamID(ctx *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation(name + " must be a positive integer")
	}
	return id, nil
}
