// Package views holds the HTML components of the upload server.
package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/pavelanni/zipreport/internal/model"
)

//go:generate templ generate

func reportURL(ctx context.Context) templ.SafeURL {
	return templ.URL(model.BasePathFromContext(ctx) + "/report")
}
