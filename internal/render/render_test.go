package render

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/zipreport/internal/analysis"
	"github.com/pavelanni/zipreport/internal/i18n"
	"github.com/pavelanni/zipreport/internal/importer"
	"github.com/pavelanni/zipreport/internal/model"
	"github.com/pavelanni/zipreport/internal/report"
)

func buildReport(t *testing.T) *report.Report {
	t.Helper()
	f, err := os.Open(filepath.Join("..", "importer", "testdata", "web_export.csv"))
	require.NoError(t, err)
	defer f.Close()

	sheets, err := importer.Read(f, importer.DefaultOptions())
	require.NoError(t, err)
	r, err := report.Build(context.Background(), analysis.NewCollection(sheets))
	require.NoError(t, err)
	return r
}

func localized(t *testing.T, lang string) context.Context {
	t.Helper()
	require.NoError(t, i18n.Init("en"))
	return i18n.WithLanguage(context.Background(), lang)
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format model.Format
		ext    string
	}{
		{model.FormatHTML, ".html"},
		{model.FormatXLSX, ".xlsx"},
		{model.FormatJSON, ".json"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			r, err := ForFormat(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.ext, r.Extension())
			assert.NotEmpty(t, r.ContentType())
		})
	}

	_, err := ForFormat(model.Format("docx"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestHTML(t *testing.T) {
	r := buildReport(t)
	r.Rosters[0].ClassName = "Period <1>"

	var buf bytes.Buffer
	require.NoError(t, HTML{}.Render(localized(t, "en"), &buf, r))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.True(t, strings.HasSuffix(out, "</body></html>"))
	assert.Contains(t, out, "<title>Report: Unit 3 Quiz</title>")
	assert.Contains(t, out, "3 students")
	assert.Contains(t, out, "Standard deviation")
	assert.Contains(t, out, "Key version A")
	assert.Contains(t, out, "Hopper, Grace")
	assert.Contains(t, out, "Period &lt;1&gt;")
	assert.NotContains(t, out, "Period <1>")
	assert.Contains(t, out, r.ID)
}

func TestHTMLRussian(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML{}.Render(localized(t, "ru"), &buf, buildReport(t)))
	assert.Contains(t, buf.String(), "Сомнительные бланки")
	assert.Contains(t, buf.String(), "3 ученика")
}

func TestHTMLNoFlags(t *testing.T) {
	r := buildReport(t)
	r.Flagged = nil

	var buf bytes.Buffer
	require.NoError(t, HTML{}.Render(localized(t, "en"), &buf, r))
	assert.Contains(t, buf.String(), "No flagged scans.")
}

func TestHTMLStudentReports(t *testing.T) {
	r := buildReport(t)

	var buf bytes.Buffer
	require.NoError(t, HTML{}.Render(localized(t, "en"), &buf, r))
	out := buf.String()

	assert.Contains(t, out, "<tr><th>ID</th><td>1001</td></tr>")
	assert.Contains(t, out, "<tr><th>ID</th><td>1003</td></tr>")
	assert.Contains(t, out, "<tr><th>Test</th><td>Unit 3 Quiz</td></tr>")
	assert.Contains(t, out, "<tr><th>Key version</th><td>A</td></tr>")
	assert.Contains(t, out, "<tr><th>Points</th><td>16 / 20</td></tr>")

	p1 := strings.Index(out, "<h2>Individual student reports for Period 1</h2>")
	p2 := strings.Index(out, "<h2>Individual student reports for Period 2</h2>")
	require.True(t, p1 >= 0 && p2 > p1, "class sections missing or out of order")
	assert.Less(t, strings.Index(out, "<h3>Lovelace, Ada</h3>"), p2)
	assert.Greater(t, strings.Index(out, "<h3>Hopper, Grace</h3>"), p2)
	assert.Greater(t, strings.Index(out, "<h3>Turing, Alan</h3>"), p2)
}

func TestHTMLStudentWithoutKeyVersion(t *testing.T) {
	r := buildReport(t)
	for i := range r.Students {
		r.Students[i].KeyVersion = ""
	}

	var buf bytes.Buffer
	require.NoError(t, HTML{}.Render(localized(t, "en"), &buf, r))
	assert.NotContains(t, buf.String(), "<th>Key version</th>")
	assert.Contains(t, buf.String(), "<tr><th>ID</th><td>1002</td></tr>")
}

func TestGroupByClass(t *testing.T) {
	groups := groupByClass([]report.Student{
		{Name: "b", ClassName: "P2"},
		{Name: "a", ClassName: "P1"},
		{Name: "c", ClassName: "P2"},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "P1", groups[0].className)
	assert.Equal(t, "P2", groups[1].className)
	require.Len(t, groups[1].students, 2)
	assert.Equal(t, "b", groups[1].students[0].Name)
	assert.Equal(t, "c", groups[1].students[1].Name)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, assert.AnError }

func TestHTMLWriteError(t *testing.T) {
	err := HTML{}.Render(localized(t, "en"), failingWriter{}, buildReport(t))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestJSON(t *testing.T) {
	r := buildReport(t)

	var buf bytes.Buffer
	require.NoError(t, JSON{}.Render(context.Background(), &buf, r))

	var got struct {
		ID       string `json:"id"`
		QuizName string `json:"quiz_name"`
		Stats    struct {
			Count int `json:"count"`
			Raw   struct {
				Mean float64 `json:"mean"`
			} `json:"raw"`
		} `json:"stats"`
		Flagged []model.FlaggedEntry `json:"flagged"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, "Unit 3 Quiz", got.QuizName)
	assert.Equal(t, 3, got.Stats.Count)
	assert.Equal(t, 16.0, got.Stats.Raw.Mean)
	assert.Len(t, got.Flagged, 1)
}

func TestXLSX(t *testing.T) {
	r := buildReport(t)

	var buf bytes.Buffer
	require.NoError(t, XLSX{}.Render(localized(t, "en"), &buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"Summary", "Distribution", "Difficulty", "Period 1", "Period 2", "Students", "Flagged",
	}, f.GetSheetList())

	cell := func(sheet, axis string) string {
		t.Helper()
		v, err := f.GetCellValue(sheet, axis)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Report: Unit 3 Quiz", cell("Summary", "A1"))
	assert.Equal(t, "Mean", cell("Summary", "A9"))
	assert.Equal(t, "16", cell("Summary", "B9"))
	assert.Equal(t, "100", cell("Distribution", "A22"))
	assert.Equal(t, "2", cell("Difficulty", "B2"))
	assert.Equal(t, "Lovelace, Ada", cell("Period 1", "A2"))
	assert.Equal(t, "Hopper, Grace", cell("Flagged", "B2"))
	assert.Equal(t, "2", cell("Flagged", "C2"))

	rows, err := f.GetRows("Students")
	require.NoError(t, err)
	assert.Len(t, rows, 1+3*5)
}

func TestSheetNames(t *testing.T) {
	wb := &workbook{used: make(map[string]bool)}
	assert.Equal(t, "Summary", wb.uniqueName("Summary"))
	assert.Equal(t, "summary (2)", wb.uniqueName("summary"))
	assert.Equal(t, "a_b_c (d)", wb.uniqueName("a/b:c [d]"))
	assert.Equal(t, "Sheet", wb.uniqueName("  "))

	long := wb.uniqueName(strings.Repeat("x", 40))
	assert.Equal(t, strings.Repeat("x", 31), long)
	again := wb.uniqueName(strings.Repeat("x", 40))
	assert.Equal(t, strings.Repeat("x", 27)+" (2)", again)
}
