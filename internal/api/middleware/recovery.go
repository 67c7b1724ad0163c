package middleware

import (
	"log/slog"
	"net/http"

	"github.com/oxgrid/tictactoe/internal/api/apierr"
	"github.com/oxgrid/tictactoe/internal/middleware"
)

// Recovery creates panic recovery middleware for the API
// Returns JSON error responses on panic
func Recovery(logger *slog.Logger, errors *apierr.Writer) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, errors.WritePanic)
}
