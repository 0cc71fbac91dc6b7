package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/dagbolade/molselector/internal/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: v}
}

// Validate reports the first failing field as a validation error.
func (rv *requestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Tag() == "required" {
			return apperr.Validation("%s is required", fe.Field())
		}
		return apperr.Validation("%s is invalid", fe.Field())
	}
	return apperr.Validation("invalid request: %v", err)
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("invalid request body")
	}
	return c.Validate(req)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrNotSelected):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse answers with {"detail": ...}. Internal failures are logged
// and reported without their cause.
func errorResponse(c echo.Context, err error, action string) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg(action)
		return c.JSON(status, map[string]string{
			"detail": fmt.Sprintf("failed to %s", action),
		})
	}

	msg, ok := apperr.Message(err)
	if !ok {
		msg = err.Error()
	}
	return c.JSON(status, map[string]string{
		"detail": msg,
	})
}
