package render

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pavelanni/zipreport/internal/i18n"
	"github.com/pavelanni/zipreport/internal/report"
)

//go:generate templ generate

// HTML renders a single printable page. Labels follow the localizer in ctx.
type HTML struct{}

func (HTML) Extension() string   { return ".html" }
func (HTML) ContentType() string { return "text/html; charset=utf-8" }

func (HTML) Render(ctx context.Context, w io.Writer, r *report.Report) error {
	if err := ReportPage(r).Render(ctx, w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func reportTitle(ctx context.Context, r *report.Report) string {
	return i18n.Td(ctx, "ReportTitle", map[string]any{"Quiz": r.QuizName})
}

func generatedLine(ctx context.Context, r *report.Report) string {
	return i18n.T(ctx, "Generated") + " " + r.GeneratedAt.Format("2006-01-02 15:04 MST") + " · " + r.ID
}

func versionLabel(ctx context.Context, version string) string {
	if version == "" {
		return i18n.T(ctx, "AllVersions")
	}
	return i18n.Td(ctx, "VersionN", map[string]any{"Version": version})
}

type statRow struct {
	id       string
	raw, pct float64
}

func statRows(s report.Stats) []statRow {
	raw, pct := s.Raw, s.Percent
	return []statRow{
		{"Mean", raw.Mean, pct.Mean},
		{"Median", raw.Median, pct.Median},
		{"StdDev", raw.StdDev, pct.StdDev},
		{"Min", raw.Min, pct.Min},
		{"Max", raw.Max, pct.Max},
		{"Q1", raw.Q1, pct.Q1},
		{"Q3", raw.Q3, pct.Q3},
	}
}

type classGroup struct {
	className string
	students  []report.Student
}

// groupByClass splits students by class, classes in name order, keeping the
// order of students within each class.
func groupByClass(students []report.Student) []classGroup {
	idx := make(map[string]int)
	var groups []classGroup
	for _, s := range students {
		i, ok := idx[s.ClassName]
		if !ok {
			i = len(groups)
			idx[s.ClassName] = i
			groups = append(groups, classGroup{className: s.ClassName})
		}
		groups[i].students = append(groups[i].students, s)
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].className < groups[b].className })
	return groups
}

// num formats a score without trailing zeros: 16, 16.5, 33.33.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}
