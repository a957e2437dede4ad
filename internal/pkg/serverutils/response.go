package serverutils

import (
	"errors"

	"collab-workspace-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Response[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

type ErrorBody struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

var validate = validator.New()

// ValidateRequest runs struct tag validation and converts failures into a
// 400 the error handler can render.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, fe.Field()+" failed on "+fe.Tag())
			}
			return &ValidationError{Details: details}
		}
		return err
	}
	return nil
}

type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "request validation failed"
}

// ErrorHandlerMiddleware maps service errors onto HTTP statuses so
// controllers can just return them.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var verr *ValidationError
		if errors.As(err, &verr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorBody{
				Status:  "error",
				Message: verr.Error(),
				Errors:  verr.Details,
			})
		}

		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			return ctx.Status(ferr.Code).JSON(ErrorBody{Status: "error", Message: ferr.Message})
		}

		switch {
		case errors.Is(err, service.ErrNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorBody{Status: "error", Message: "resource not found"})
		case errors.Is(err, service.ErrForbidden):
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorBody{Status: "error", Message: "access denied"})
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorBody{Status: "error", Message: "internal server error"})
		}
	}
}
