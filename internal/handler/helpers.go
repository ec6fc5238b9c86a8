package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"tavola-rest-api/internal/repository"
	"tavola-rest-api/internal/service"
	"tavola-rest-api/pkg/apierror"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate decodes a JSON body into dst and runs struct
// validation on it.
func decodeAndValidate(r *http.Request, dst interface{}) *apierror.Error {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apierror.BadRequest("invalid JSON body")
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]apierror.FieldError, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, apierror.FieldError{
					Field:   fe.Field(),
					Message: "failed on " + fe.Tag(),
				})
			}
			return apierror.ValidationError("validation failed", details...)
		}
		return apierror.BadRequest("validation failed")
	}

	return nil
}

// mapError converts service and repository errors to API errors.
func mapError(err error) *apierror.Error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apierror.NotFound("")
	case errors.Is(err, repository.ErrDuplicate):
		return apierror.Conflict(err.Error())
	case errors.Is(err, service.ErrBusinessClosed),
		errors.Is(err, service.ErrBelowMinimum),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, service.ErrInvalidCoupon):
		return apierror.UnprocessableEntity(err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		return apierror.Conflict(err.Error())
	}
	return apierror.InternalError("")
}

// queryInt parses an integer query parameter, returning def when absent
// or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}
