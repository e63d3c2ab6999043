// Package common holds the response envelope, RFC 9457 problem details and
// request binding shared by the HTTP handlers.
package common

import (
	"errors"

	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

var validate = validator.New()

// ErrorToStatusCode maps an error kind to its HTTP status.
func ErrorToStatusCode(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch domain.KindOf(err) {
	case domain.ErrValidation:
		return fiber.StatusBadRequest
	case domain.ErrNotFound:
		return fiber.StatusNotFound
	case domain.ErrInsufficientFunds:
		return fiber.StatusUnprocessableEntity
	case domain.ErrLimitExceeded, domain.ErrForbidden:
		return fiber.StatusForbidden
	case domain.ErrAlreadyExists, domain.ErrInvalidStateTransition:
		return fiber.StatusConflict
	case domain.ErrUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// ProblemDetailsJSON writes an application/problem+json response. The status
// comes from err unless an int is passed in args; a string in args becomes
// the detail and any other value is reported under errors. Internal errors
// never leak their message.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, args ...any) error {
	status := fiber.StatusBadRequest
	if err != nil {
		status = ErrorToStatusCode(err)
	}
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Instance: c.OriginalURL(),
	}
	if err != nil && status != fiber.StatusInternalServerError {
		pd.Detail = err.Error()
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case int:
			status = v
		case string:
			pd.Detail = v
		case nil:
		default:
			pd.Errors = v
		}
	}
	pd.Status = status

	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(pd)
}

// SuccessResponseJSON writes the standard success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// BindAndValidate parses the request body and validates it using
// go-playground/validator. On failure the problem response is already
// written and the returned pointer is nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", nil, err.Error(), fiber.StatusBadRequest)
	}
	if err := validate.Struct(input); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			details := make(map[string]string, len(fields))
			for _, f := range fields {
				details[f.Field()] = f.Tag()
			}
			return nil, ProblemDetailsJSON(c, "Validation failed", nil, "request has invalid fields", details, fiber.StatusBadRequest)
		}
		return nil, ProblemDetailsJSON(c, "Validation failed", nil, err.Error(), fiber.StatusBadRequest)
	}
	return &input, nil
}

// TokenSource resolves the caller of a JWT-protected route.
type TokenSource interface {
	CurrentUserID(token *jwt.Token) (uuid.UUID, error)
}

// CurrentUserID reads the token the JWT middleware stored in the context.
// It writes a 401 and returns ok=false when the caller cannot be resolved.
func CurrentUserID(c *fiber.Ctx, auth TokenSource) (id uuid.UUID, ok bool, err error) {
	token, isToken := c.Locals("user").(*jwt.Token)
	if !isToken {
		return uuid.Nil, false, ProblemDetailsJSON(c, "Unauthorized", nil, "missing user context", fiber.StatusUnauthorized)
	}
	id, err = auth.CurrentUserID(token)
	if err != nil {
		return uuid.Nil, false, ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
	}
	return id, true, nil
}
