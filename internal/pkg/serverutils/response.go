package serverutils

import (
	"errors"

	"marketplace-billing-be/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func SuccessResponse(ctx *fiber.Ctx, status int, data interface{}) error {
	return ctx.Status(status).JSON(Response{
		Success: true,
		Data:    data,
	})
}

func ErrorResponse(ctx *fiber.Ctx, status int, message string) error {
	return ctx.Status(status).JSON(Response{
		Success: false,
		Message: message,
	})
}

var validate = validator.New()

// ValidateRequest parses the JSON body into req and runs struct validation.
func ValidateRequest(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		var fieldErrors []string
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fieldErrors = append(fieldErrors, fe.Field()+": failed on "+fe.Tag())
			}
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(Response{
			Success: false,
			Message: "Validation failed",
			Errors:  fieldErrors,
		})
	}
	return nil
}

// MapError translates domain errors into HTTP responses.
func MapError(ctx *fiber.Ctx, err error) error {
	var (
		validationErr   *apperror.ValidationError
		notFoundErr     *apperror.NotFoundError
		conflictErr     *apperror.ConflictError
		fundsErr        *apperror.InsufficientFundsError
		gatewayErr      *apperror.GatewayError
		authenticityErr *apperror.AuthenticityError
		invariantErr    *apperror.InvariantViolation
	)

	switch {
	case errors.As(err, &validationErr):
		return ErrorResponse(ctx, fiber.StatusBadRequest, validationErr.Error())
	case errors.As(err, &notFoundErr):
		return ErrorResponse(ctx, fiber.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		return ErrorResponse(ctx, fiber.StatusConflict, conflictErr.Error())
	case errors.As(err, &fundsErr):
		return ErrorResponse(ctx, fiber.StatusUnprocessableEntity, fundsErr.Error())
	case errors.As(err, &gatewayErr):
		return ErrorResponse(ctx, fiber.StatusBadGateway, gatewayErr.Error())
	case errors.As(err, &authenticityErr):
		return ErrorResponse(ctx, fiber.StatusUnauthorized, authenticityErr.Error())
	case errors.As(err, &invariantErr):
		return ErrorResponse(ctx, fiber.StatusInternalServerError, "internal ledger error")
	default:
		return ErrorResponse(ctx, fiber.StatusInternalServerError, "Internal server error")
	}
}
