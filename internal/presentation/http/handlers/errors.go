// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"net/http"

	"github.com/AtRiskMedia/scarcity-go/internal/application/services"
	"github.com/AtRiskMedia/scarcity-go/internal/domain/inventory"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrMissingField):
		return http.StatusBadRequest
	case inventory.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrOutOfStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage keeps internal error text out of 5xx responses.
func publicMessage(status int, err error) string {
	if status >= http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
