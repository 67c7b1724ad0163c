// Package templates holds the HTML views. The .templ sources under layout,
// components and pages compile to the checked-in *_templ.go files.
package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate -path .
