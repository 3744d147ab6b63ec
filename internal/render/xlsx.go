package render

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/zipreport/internal/i18n"
	"github.com/pavelanni/zipreport/internal/report"
)

// Excel limits sheet names to 31 characters and forbids a few symbols.
const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "(", "]", ")",
)

// XLSX renders an Excel workbook with one sheet per report section and one
// roster sheet per class.
type XLSX struct{}

func (XLSX) Extension() string { return ".xlsx" }
func (XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSX) Render(ctx context.Context, w io.Writer, r *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	wb := &workbook{f: f, used: make(map[string]bool)}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	wb.bold = bold

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       r.QuizName,
		Identifier:  r.ID,
		Creator:     "zipreport",
		Description: i18n.T(ctx, "AppTitle"),
	}); err != nil {
		return fmt.Errorf("set document properties: %w", err)
	}

	writeSummary(ctx, wb, r)
	writeDistribution(ctx, wb, r)
	writeDifficulty(ctx, wb, r)
	for _, ro := range r.Rosters {
		writeRoster(ctx, wb, ro)
	}
	writeStudents(ctx, wb, r)
	writeFlagged(ctx, wb, r)
	if wb.err != nil {
		return fmt.Errorf("build workbook: %w", wb.err)
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(ctx context.Context, wb *workbook, r *report.Report) {
	s := wb.sheet("Summary")
	s.header(i18n.Td(ctx, "ReportTitle", map[string]any{"Quiz": r.QuizName}))
	s.append(i18n.T(ctx, "Created"), r.DateCreated)
	s.append(i18n.T(ctx, "Exported"), r.DateExported)
	s.append(i18n.T(ctx, "Classes"), strings.Join(r.Classes, ", "))
	s.append(i18n.T(ctx, "Students"), r.Stats.Count)
	s.append(i18n.T(ctx, "PossiblePoints"), r.Stats.PossiblePoints)
	s.append()
	s.header(i18n.T(ctx, "Statistic"), i18n.T(ctx, "RawScore"), i18n.T(ctx, "Percent"))
	raw, pct := r.Stats.Raw, r.Stats.Percent
	s.append(i18n.T(ctx, "Mean"), raw.Mean, pct.Mean)
	s.append(i18n.T(ctx, "Median"), raw.Median, pct.Median)
	s.append(i18n.T(ctx, "StdDev"), raw.StdDev, pct.StdDev)
	s.append(i18n.T(ctx, "Min"), raw.Min, pct.Min)
	s.append(i18n.T(ctx, "Max"), raw.Max, pct.Max)
	s.append(i18n.T(ctx, "Q1"), raw.Q1, pct.Q1)
	s.append(i18n.T(ctx, "Q3"), raw.Q3, pct.Q3)
	s.width("A", 28)
}

func writeDistribution(ctx context.Context, wb *workbook, r *report.Report) {
	s := wb.sheet("Distribution")
	s.header(i18n.T(ctx, "Range"), i18n.T(ctx, "Students"))
	for _, b := range r.Distribution {
		s.append(b.Label, b.Count)
	}
}

func writeDifficulty(ctx context.Context, wb *workbook, r *report.Report) {
	s := wb.sheet("Difficulty")
	s.header(i18n.T(ctx, "KeyVersion"), i18n.T(ctx, "Question"), i18n.T(ctx, "Misses"), i18n.T(ctx, "MissPercent"), "")
	for _, vd := range r.Difficulty {
		for _, rec := range vd.Records {
			var class string
			switch {
			case !vd.Classified:
			case rec.MissPercent >= vd.HardThreshold:
				class = i18n.Td(ctx, "Hardest", map[string]any{"Threshold": num(vd.HardThreshold)})
			case rec.MissPercent <= vd.EasyThreshold:
				class = i18n.Td(ctx, "Easiest", map[string]any{"Threshold": num(vd.EasyThreshold)})
			}
			s.append(vd.Version, rec.Question, rec.Misses, rec.MissPercent, class)
		}
	}
}

func writeRoster(ctx context.Context, wb *workbook, ro report.Roster) {
	s := wb.sheet(ro.ClassName)
	s.header(i18n.T(ctx, "Name"), i18n.T(ctx, "StudentID"), i18n.T(ctx, "Points"), i18n.T(ctx, "Score"))
	for _, e := range ro.Entries {
		s.append(e.Name, e.ZipID, e.Earned, e.Percent)
	}
	s.width("A", 28)
}

func writeStudents(ctx context.Context, wb *workbook, r *report.Report) {
	s := wb.sheet("Students")
	s.header(i18n.T(ctx, "Name"), i18n.T(ctx, "StudentID"), i18n.T(ctx, "Class"), i18n.T(ctx, "KeyVersion"),
		i18n.T(ctx, "Points"), i18n.T(ctx, "Score"),
		i18n.T(ctx, "Question"), i18n.T(ctx, "Answer"), i18n.T(ctx, "Correct"))
	for _, st := range r.Students {
		if len(st.Responses) == 0 {
			s.append(st.Name, st.ZipID, st.ClassName, st.KeyVersion, st.Earned, st.Percent)
			continue
		}
		for _, resp := range st.Responses {
			s.append(st.Name, st.ZipID, st.ClassName, st.KeyVersion, st.Earned, st.Percent,
				resp.Question, resp.Answer, resp.Correct)
		}
	}
	s.width("A", 28)
}

func writeFlagged(ctx context.Context, wb *workbook, r *report.Report) {
	s := wb.sheet("Flagged")
	s.header(i18n.T(ctx, "Class"), i18n.T(ctx, "Name"), i18n.T(ctx, "Questions"))
	for _, fl := range r.Flagged {
		s.append(fl.ClassName, fl.StudentName, joinInts(fl.Questions))
	}
	s.width("B", 28)
}

// workbook tracks sheet names and the first excelize error.
type workbook struct {
	f      *excelize.File
	bold   int
	used   map[string]bool
	sheets int
	err    error
}

type sheet struct {
	wb   *workbook
	name string
	row  int
}

// sheet adds a worksheet. The first call renames the default sheet.
func (wb *workbook) sheet(title string) *sheet {
	name := wb.uniqueName(title)
	if wb.err == nil {
		if wb.sheets == 0 {
			wb.err = wb.f.SetSheetName(wb.f.GetSheetName(0), name)
		} else {
			_, wb.err = wb.f.NewSheet(name)
		}
	}
	wb.sheets++
	return &sheet{wb: wb, name: name}
}

// uniqueName makes title a valid, unused sheet name. Excel compares names
// case-insensitively.
func (wb *workbook) uniqueName(title string) string {
	base := truncateRunes(strings.TrimSpace(sheetNameReplacer.Replace(title)), maxSheetName)
	base = strings.Trim(base, "'")
	if base == "" {
		base = "Sheet"
	}
	name := base
	for i := 2; wb.used[strings.ToLower(name)]; i++ {
		suffix := " (" + strconv.Itoa(i) + ")"
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	wb.used[strings.ToLower(name)] = true
	return name
}

func (s *sheet) append(values ...any) {
	s.row++
	if s.wb.err != nil || len(values) == 0 {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		s.wb.err = err
		return
	}
	s.wb.err = s.wb.f.SetSheetRow(s.name, cell, &values)
}

func (s *sheet) header(values ...string) {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	s.append(row...)
	if s.wb.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(max(len(values), 1), s.row)
	if err != nil {
		s.wb.err = err
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, s.row)
	s.wb.err = s.wb.f.SetCellStyle(s.name, first, last, s.wb.bold)
}

func (s *sheet) width(col string, w float64) {
	if s.wb.err != nil {
		return
	}
	s.wb.err = s.wb.f.SetColWidth(s.name, col, col, w)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
