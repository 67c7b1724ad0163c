package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RouteTemplate labels a request with its matched gorilla/mux path template,
// keeping metric cardinality bounded by the route table
func RouteTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return tpl
}
