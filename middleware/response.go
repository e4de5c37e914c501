package middleware

import (
	"errors"

	"certdesk/apperr"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse answers with the status and message matching err's kind
func ErrorResponse(c *fiber.Ctx, err error) error {
	if apperr.IsValidation(err) {
		return ValidationErrorResponse(c, apperr.FieldsOf(err))
	}

	status := apperr.HTTPStatus(err)
	var data interface{}
	switch {
	case errors.Is(err, apperr.ErrBusy):
		return JsonResponse(c, status, false, "A request is already in progress!", nil)
	case errors.Is(err, apperr.ErrInvalidState):
		return JsonResponse(c, status, false, "Action not allowed right now!", fiber.Map{"error": err.Error()})
	case apperr.IsNotFound(err):
		return JsonResponse(c, status, false, "Not found!", fiber.Map{"error": err.Error()})
	case apperr.IsNetwork(err), apperr.IsService(err):
		data = fiber.Map{"kind": apperr.KindOf(err), "error": err.Error()}
		return JsonResponse(c, status, false, "Upstream service failed!", data)
	}
	return JsonResponse(c, status, false, "Something went wrong!", nil)
}
