package middleware

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/oxgrid/tictactoe/internal/middleware"
	"github.com/oxgrid/tictactoe/internal/web/templates/layout"
	"github.com/oxgrid/tictactoe/internal/web/templates/pages"
)

// Recovery creates panic recovery middleware for the web interface
// Returns an HTML error page on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	page := pages.Error(pages.ErrorData{
		PageData: layout.PageData{Title: "Error"},
		Status:  http.StatusInternalServerError,
		Message: "Something went wrong. Please try again later.",
	})
	templ.Handler(page, templ.WithStatus(http.StatusInternalServerError)).ServeHTTP(w, r)
}
