package handler

import (
	"github.com/oxgrid/tictactoe/internal/api/apierr"
)

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}
