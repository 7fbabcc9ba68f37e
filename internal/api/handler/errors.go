package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Rrens/slidecraft/internal/api/response"
	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// errorStatus maps domain failures onto HTTP statuses, first match wins.
// Failures marked opaque reply with the bare sentinel text so storage and
// token internals do not leak.
var errorStatus = []struct {
	target error
	status int
	opaque bool
}{
	{domain.ErrInvalidRequest, http.StatusBadRequest, false},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, true},
	{domain.ErrQuotaExceeded, http.StatusPaymentRequired, false},
	{domain.ErrNotFound, http.StatusNotFound, false},
	{domain.ErrEmailTaken, http.StatusConflict, false},
	{domain.ErrUploadFailure, http.StatusUnprocessableEntity, false},
	{domain.ErrInferenceFailure, http.StatusBadGateway, false},
	{domain.ErrPersistenceFailure, http.StatusServiceUnavailable, true},
}

func writeError(w http.ResponseWriter, err error) {
	for _, e := range errorStatus {
		if !errors.Is(err, e.target) {
			continue
		}
		if e.opaque {
			response.Error(w, e.status, e.target.Error())
		} else {
			response.Error(w, e.status, err.Error())
		}
		return
	}

	log.Error().Err(err).Msg("Unhandled request error")
	response.Error(w, http.StatusInternalServerError, "internal server error")
}

// bind decodes the JSON body into v and validates it. On failure the
// reply is already written and bind returns false.
func bind(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.BadRequest(w, "invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		validationError(w, err)
		return false
	}
	return true
}

// validationError renders validator failures per field
func validationError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		response.BadRequest(w, err.Error())
		return
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			fields[e.Field()] = "field is required"
		case "email":
			fields[e.Field()] = "invalid email format"
		case "min":
			fields[e.Field()] = "must be at least " + e.Param()
		case "max":
			fields[e.Field()] = "must be at most " + e.Param()
		case "oneof":
			fields[e.Field()] = "must be one of: " + e.Param()
		default:
			fields[e.Field()] = "validation failed on " + e.Tag()
		}
	}
	response.BadRequest(w, fields)
}
