package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Aditya2073/agrisample/internal/apierr"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// respondWithError отправляет JSON ошибку
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, apierr.Body{Error: message})
}

// respondWithDomainError maps a service error to its status and wire code.
func respondWithDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	code, status := apierr.Lookup(err)
	message := fallback
	if code != apierr.CodeInternal {
		message = err.Error()
	}

	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Str("path", r.URL.Path).Int("status", status).Str("code", code).Msg(fallback)

	respondWithJSON(w, status, apierr.Body{Error: message, Code: code})
}

// respondWithJSON отправляет JSON ответ
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// decodeAndValidate reads a JSON body and runs struct validation. It writes the
// error response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithJSON(w, http.StatusBadRequest, apierr.Body{
			Error: fmt.Sprintf("Invalid request payload %v", err),
			Code:  apierr.CodeBadRequest,
		})
		return false
	}

	if err := validate.Struct(dst); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
			return false
		}
		details := formatValidationErrors(validationErrors)
		respondWithJSON(w, http.StatusBadRequest, apierr.Body{
			Error:   "Validation failed: " + strings.Join(details, "; "),
			Code:    apierr.CodeValidation,
			Details: details,
		})
		return false
	}
	return true
}

func formatValidationErrors(errs validator.ValidationErrors) []string {
	details := make([]string, 0, len(errs))
	for _, fe := range errs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("Field '%s' is required", fe.Field())
		case "email":
			msg = fmt.Sprintf("Field '%s' must be a valid email address", fe.Field())
		case "min":
			msg = fmt.Sprintf("Field '%s' must be at least %s characters long", fe.Field(), fe.Param())
		case "max":
			msg = fmt.Sprintf("Field '%s' must be at most %s characters long", fe.Field(), fe.Param())
		case "gt", "gte":
			msg = fmt.Sprintf("Field '%s' must be %s %s", fe.Field(), map[string]string{"gt": "greater than", "gte": "at least"}[fe.Tag()], fe.Param())
		case "oneof":
			msg = fmt.Sprintf("Field '%s' must be one of: %s", fe.Field(), fe.Param())
		default:
			msg = fmt.Sprintf("Field '%s' failed on the '%s' rule", fe.Field(), fe.Tag())
		}
		details = append(details, msg)
	}
	return details
}
