package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

var validate = newValidator()

// newValidator usa los nombres JSON/query en los errores por campo.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// requestError error de entrada detectado en la capa HTTP (body o query mal formados).
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

// bindJSON parsea y valida el body.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &requestError{code: "INVALID_BODY", message: "cuerpo inválido"}
	}
	return validate.Struct(out)
}

// bindQuery parsea y valida los parámetros de consulta.
func bindQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return &requestError{code: "INVALID_QUERY", message: "parámetros de consulta inválidos"}
	}
	return validate.Struct(out)
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(dto.SuccessResponse{Success: true, Data: data})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{Success: true, Data: data})
}

func message(c *fiber.Ctx, msg string) error {
	return c.JSON(dto.SuccessResponse{Success: true, Message: msg})
}

func fail(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// attachment devuelve un archivo binario (PDF, XLSX) sin envoltorio JSON.
func attachment(c *fiber.Ctx, contentType, filename string, data []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrorHandler traduce los errores devueltos por los handlers a status + código.
// Los 5xx se registran; el mensaje interno nunca llega al cliente.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			reqErr *requestError
			valErr validator.ValidationErrors
			fbErr  *fiber.Error
		)
		switch {
		case errors.As(err, &reqErr):
			return fail(c, fiber.StatusBadRequest, reqErr.code, reqErr.message)
		case errors.As(err, &valErr):
			fields := make(map[string]string, len(valErr))
			for _, fe := range valErr {
				fields[fe.Field()] = fe.Tag()
			}
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code: "VALIDATION", Message: "datos inválidos", Fields: fields,
			})
		case errors.As(err, &fbErr):
			return fail(c, fbErr.Code, fiberCode(fbErr.Code), fbErr.Message)
		}

		status, code := classify(err)
		msg := err.Error()
		if status == fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).
				Str("company_id", GetCompanyID(c)).Msg("error no controlado")
			msg = "error interno"
		}
		return fail(c, status, code, msg)
	}
}

// classify mapea los errores de dominio. Se evalúan con errors.Is porque los use cases envuelven con %w.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, tenant.ErrMissingTenant), errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrModuleDisabled):
		return fiber.StatusForbidden, "MODULE_DISABLED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, "EMAIL_EXISTS"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrNotEditable):
		return fiber.StatusConflict, "NOT_EDITABLE"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	}
	if status >= 500 {
		return "INTERNAL"
	}
	return "BAD_REQUEST"
}
