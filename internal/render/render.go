// Package render turns a report into a downloadable document.
package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pavelanni/zipreport/internal/model"
	"github.com/pavelanni/zipreport/internal/report"
)

// ErrUnknownFormat is returned by ForFormat for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Renderer writes a report in one document format.
type Renderer interface {
	Render(ctx context.Context, w io.Writer, r *report.Report) error
	// Extension includes the leading dot.
	Extension() string
	ContentType() string
}

// ForFormat returns the renderer for the given format.
func ForFormat(f model.Format) (Renderer, error) {
	switch f {
	case model.FormatHTML:
		return HTML{}, nil
	case model.FormatXLSX:
		return XLSX{}, nil
	case model.FormatJSON:
		return JSON{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// JSON writes the report model as indented JSON.
type JSON struct{}

func (JSON) Extension() string   { return ".json" }
func (JSON) ContentType() string { return "application/json" }

func (JSON) Render(_ context.Context, w io.Writer, r *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
