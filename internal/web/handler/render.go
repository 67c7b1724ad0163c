package handler

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/oxgrid/tictactoe/internal/web/middleware"
	"github.com/oxgrid/tictactoe/internal/web/templates/layout"
	"github.com/oxgrid/tictactoe/internal/web/templates/pages"
)

// render writes c as an HTML response with the given status
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	templ.Handler(c, templ.WithStatus(status)).ServeHTTP(w, r)
}

// RenderError writes a full error page
func RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render(w, r, status, pages.Error(pages.ErrorData{
		PageData: pageData(r, "Error"),
		Status:   status,
		Message:  message,
	}))
}

func pageData(r *http.Request, title string) layout.PageData {
	return layout.PageData{
		Title:  title,
		Player: middleware.GetPlayer(r.Context()),
		Flash:  middleware.GetFlash(r.Context()),
	}
}
