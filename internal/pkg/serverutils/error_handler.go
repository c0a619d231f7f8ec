package serverutils

import (
	"errors"

	"carematch-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

var kindStatus = map[apperror.Kind]int{
	apperror.KindValidation:      fiber.StatusUnprocessableEntity,
	apperror.KindConflict:        fiber.StatusConflict,
	apperror.KindNotFound:        fiber.StatusNotFound,
	apperror.KindForbidden:       fiber.StatusForbidden,
	apperror.KindInvalidState:    fiber.StatusConflict,
	apperror.KindGateway:         fiber.StatusBadGateway,
	apperror.KindUnauthenticated: fiber.StatusUnauthorized,
}

// StatusFor maps an error to the HTTP status and the message shown to the
// caller. Unclassified errors are reported as a bare 500.
func StatusFor(err error) (int, string) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		if status, ok := kindStatus[appErr.Kind]; ok {
			if appErr.Kind == apperror.KindGateway {
				// Gateway detail stays in the logs.
				return status, appErr.Message
			}
			msg := appErr.Message
			if appErr.Resource != "" {
				msg = msg + " (" + appErr.Resource + ")"
			}
			return status, msg
		}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	return fiber.StatusInternalServerError, "internal server error"
}

func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		status, message := StatusFor(err)
		return ctx.Status(status).JSON(ErrorResponse(status, message))
	}
}
