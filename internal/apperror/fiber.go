package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ToFiber maps a service error onto the fiber error the handlers return.
func ToFiber(err error) *fiber.Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case KindValidation:
			return fiber.NewError(fiber.StatusBadRequest, appErr.Message)
		case KindConflict:
			return fiber.NewError(fiber.StatusConflict, appErr.Message)
		case KindNotFound:
			return fiber.NewError(fiber.StatusNotFound, appErr.Message)
		}
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
