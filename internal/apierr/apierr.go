// Package apierr is the error vocabulary shared by the HTTP handlers and the client.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Aditya2073/agrisample/internal/assistant"
	"github.com/Aditya2073/agrisample/internal/auth"
	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/Aditya2073/agrisample/internal/profile"
)

const (
	CodeValidation   = "validation_failed"
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthenticated"
	CodeInternal     = "internal"
)

// Body is the JSON error envelope.
type Body struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

type entry struct {
	err    error
	code   string
	status int
}

// Порядок важен: PartialFailureError оборачивает исходную ошибку, например ErrConflict.
var table = []entry{
	{order.ErrPartialFailure, "partial_failure", http.StatusInternalServerError},
	{order.ErrNoLongerAvailable, "no_longer_available", http.StatusGone},
	{order.ErrInsufficientStock, "insufficient_stock", http.StatusUnprocessableEntity},
	{order.ErrInvalidTransition, "invalid_transition", http.StatusUnprocessableEntity},
	{order.ErrInvalidQuantity, "invalid_quantity", http.StatusUnprocessableEntity},
	{order.ErrConflict, "conflict", http.StatusConflict},
	{order.ErrNotPermitted, "not_permitted", http.StatusForbidden},
	{order.ErrNotFound, "order_not_found", http.StatusNotFound},
	{produce.ErrNotFound, "produce_not_found", http.StatusNotFound},
	{produce.ErrNotFarmer, "not_farmer", http.StatusForbidden},
	{produce.ErrInvalidListing, "invalid_listing", http.StatusUnprocessableEntity},
	{profile.ErrNotFound, "profile_not_found", http.StatusNotFound},
	{auth.ErrEmailExists, "email_exists", http.StatusConflict},
	{auth.ErrInvalidCredentials, "invalid_credentials", http.StatusUnauthorized},
	{auth.ErrInvalidToken, "invalid_token", http.StatusUnauthorized},
	{auth.ErrSessionRevoked, "session_revoked", http.StatusUnauthorized},
	{assistant.ErrNotFarmer, "assistant_farmers_only", http.StatusForbidden},
	{assistant.ErrUnavailable, "assistant_unavailable", http.StatusServiceUnavailable},
}

// Lookup returns the wire code and HTTP status for err.
func Lookup(err error) (code string, status int) {
	for _, e := range table {
		if errors.Is(err, e.err) {
			return e.code, e.status
		}
	}
	return CodeInternal, http.StatusInternalServerError
}

// Sentinel maps a wire code back to the domain error, nil if unknown.
func Sentinel(code string) error {
	for _, e := range table {
		if e.code == code {
			return e.err
		}
	}
	return nil
}

// Error is a decoded error response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details []string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Unwrap lets errors.Is match the domain sentinel behind the code.
func (e *Error) Unwrap() error {
	return Sentinel(e.Code)
}
