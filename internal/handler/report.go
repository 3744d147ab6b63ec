package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/pavelanni/zipreport/internal/analysis"
	"github.com/pavelanni/zipreport/internal/filename"
	"github.com/pavelanni/zipreport/internal/importer"
	"github.com/pavelanni/zipreport/internal/metrics"
	"github.com/pavelanni/zipreport/internal/model"
	"github.com/pavelanni/zipreport/internal/render"
	"github.com/pavelanni/zipreport/internal/report"
	"github.com/pavelanni/zipreport/internal/stats"
)

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	format := model.ParseFormat(r.FormValue("format"))
	if format == "" {
		format = h.config.Report.Format
	}
	outcome := metrics.OutcomeError
	defer func() {
		h.metrics.Observe(string(format), outcome, time.Since(start))
	}()

	renderer, err := render.ForFormat(format)
	if err != nil {
		outcome = metrics.OutcomeInvalidInput
		format = "unknown"
		h.errorf(w, r, http.StatusBadRequest, "%v", err)
		return
	}

	file, header, err := r.FormFile("export_file")
	if err != nil {
		outcome = metrics.OutcomeInvalidInput
		h.errorf(w, r, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()
	h.metrics.UploadBytes.Observe(float64(header.Size))

	opts := importer.Options{
		Delimiter: h.config.Report.DelimiterRune(),
		Strict:    h.config.Report.Strict,
	}
	sheets, err := importer.Read(file, opts)
	if err != nil {
		status, resp := importErrorResponse(err)
		if status < http.StatusInternalServerError {
			outcome = metrics.OutcomeInvalidInput
		}
		h.writeError(w, r, status, resp)
		return
	}
	h.metrics.Scoresheets.Observe(float64(len(sheets)))

	coll := analysis.NewCollection(sheets)
	rep, err := report.Build(r.Context(), coll)
	if err != nil {
		status, resp := importErrorResponse(err)
		if status < http.StatusInternalServerError {
			outcome = metrics.OutcomeInvalidInput
		}
		h.writeError(w, r, status, resp)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(r.Context(), &buf, rep); err != nil {
		h.errorf(w, r, http.StatusInternalServerError, "render report: %v", err)
		return
	}

	first, _ := coll.First()
	name, err := filename.Derive(first.QuizName, "", first.DateExported, renderer.Extension())
	if err != nil {
		slog.Warn("using fallback report name", "error", err)
		name = filename.Fallback(renderer.Extension())
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Report-ID", rep.ID)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("write report", "error", err)
		return
	}
	outcome = metrics.OutcomeOK
	slog.Info("report generated",
		"id", rep.ID,
		"upload", header.Filename,
		"file", name,
		"format", format,
		"students", coll.Len(),
		"elapsed", time.Since(start),
	)
}

// importErrorResponse maps pipeline errors caused by the uploaded data to 422
// and everything else to 500.
func importErrorResponse(err error) (int, errorResponse) {
	resp := errorResponse{Error: err.Error()}

	var (
		recErr   *importer.RecordParseError
		fieldErr *importer.MissingFieldError
		dataErr  *stats.InsufficientDataError
	)
	if errors.As(err, &recErr) {
		resp.Line = recErr.Line
	}
	if errors.As(err, &fieldErr) {
		resp.Field = fieldErr.Field
	}

	switch {
	case recErr != nil, fieldErr != nil, errors.As(err, &dataErr),
		errors.Is(err, importer.ErrEmptyInput),
		errors.Is(err, importer.ErrNoRecords),
		errors.Is(err, importer.ErrNoQuestions),
		errors.Is(err, importer.ErrKeyColumns),
		errors.Is(err, report.ErrEmptyCollection):
		return http.StatusUnprocessableEntity, resp
	default:
		return http.StatusInternalServerError, resp
	}
}
