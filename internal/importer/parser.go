package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pavelanni/zipreport/internal/model"
)

// Options controls how export lines are split.
type Options struct {
	// Delimiter separating fields. Zero means comma.
	Delimiter rune
	// Strict splits rows with a quoted-CSV reader so that a delimiter inside a
	// quoted value stays part of the value. The default naive split matches the
	// ZipGrade reporter behavior and mis-splits such rows.
	Strict bool
}

// DefaultOptions returns naive comma splitting.
func DefaultOptions() Options {
	return Options{Delimiter: ','}
}

func (o Options) delim() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

var keyField = regexp.MustCompile(`^` + keyPrefix + `(\d+)$`)

// Header is a normalized, validated export header.
type Header struct {
	Fields       []string
	NumQuestions int

	// keys holds question numbers that have an answer key column, ascending.
	keys []int
}

// ParseHeader normalizes the header line and checks that every required metadata
// column is present.
func ParseHeader(line string, opts Options) (*Header, error) {
	line = NormalizeHeader(trimLineEnd(line), opts.delim())
	raw, err := split(line, opts)
	if err != nil {
		return nil, fmt.Errorf("split header: %w", err)
	}

	h := &Header{Fields: make([]string, len(raw))}
	present := make(map[string]bool, len(raw))
	for i, f := range raw {
		name := cleanValue(f)
		h.Fields[i] = name
		present[name] = true
		if m := keyField.FindStringSubmatch(name); m != nil {
			n, _ := strconv.Atoi(m[1])
			h.keys = append(h.keys, n)
		}
	}
	for _, f := range requiredFields {
		if !present[f] {
			return nil, &MissingFieldError{Field: f}
		}
	}
	sort.Ints(h.keys)
	h.NumQuestions = (len(h.Fields) - metadataColumns) / columnsPerQuestion
	return h, nil
}

// ParseRecord turns one data row into a scoresheet. lineNo is used for error context only.
func ParseRecord(h *Header, lineNo int, line string, opts Options) (model.Scoresheet, error) {
	line = trimLineEnd(line)
	fail := func(err error) (model.Scoresheet, error) {
		return model.Scoresheet{}, &RecordParseError{Line: lineNo, Text: line, Err: err}
	}

	values, err := split(line, opts)
	if err != nil {
		return fail(err)
	}
	data := make(map[string]string, len(h.Fields))
	for i, f := range h.Fields {
		if i >= len(values) {
			break
		}
		data[f] = cleanValue(values[i])
	}

	var missing error
	get := func(name string) string {
		v, ok := data[name]
		if !ok && missing == nil {
			missing = &MissingFieldError{Field: name}
		}
		return v
	}

	s := model.Scoresheet{
		QuizName:       get(FieldQuizName),
		ClassName:      get(FieldQuizClass),
		FirstName:      get(FieldFirstName),
		LastName:       get(FieldLastName),
		ZipID:          get(FieldStudentID),
		ExternalID:     get(FieldCustomID),
		EarnedPoints:   get(FieldEarnedPoints),
		PossiblePoints: get(FieldPossiblePoints),
		PercentCorrect: get(FieldPercentCorrect),
		DateCreated:    get(FieldQuizCreated),
		DateExported:   get(FieldDataExported),
		KeyVersion:     get(FieldKeyVersion),
		NumQuestions:   h.NumQuestions,
	}
	if missing != nil {
		return fail(missing)
	}

	if s.Earned, err = parseNumber(FieldEarnedPoints, s.EarnedPoints); err != nil {
		return fail(err)
	}
	if s.Possible, err = parseNumber(FieldPossiblePoints, s.PossiblePoints); err != nil {
		return fail(err)
	}
	if s.Percent, err = parseNumber(FieldPercentCorrect, s.PercentCorrect); err != nil {
		return fail(err)
	}

	if h.NumQuestions <= 0 {
		return fail(ErrNoQuestions)
	}
	maxKey := 0
	if len(h.keys) > 0 {
		maxKey = h.keys[len(h.keys)-1]
	}
	s.Responses = make([]model.Response, 0, h.NumQuestions)
	for q := 1; len(s.Responses) < h.NumQuestions; q++ {
		if q > maxKey {
			return fail(fmt.Errorf("%w: found %d of %d", ErrKeyColumns, len(s.Responses), h.NumQuestions))
		}
		correct, ok := data[keyPrefix+strconv.Itoa(q)]
		if !ok {
			continue
		}
		s.Responses = append(s.Responses, model.Response{
			Question: q,
			Answer:   data[studentPrefix+strconv.Itoa(q)],
			Correct:  correct,
		})
	}
	return s, nil
}

// Parse builds scoresheets from a header line and the data lines that follow it.
// Blank lines are skipped. The first bad row aborts the whole export.
func Parse(header string, lines []string, opts Options) ([]model.Scoresheet, error) {
	h, err := ParseHeader(header, opts)
	if err != nil {
		return nil, err
	}
	var sheets []model.Scoresheet
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		s, err := ParseRecord(h, i+2, line, opts)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, s)
	}
	if len(sheets) == 0 {
		return nil, ErrNoRecords
	}
	return sheets, nil
}

// Read splits an export stream into lines and parses it.
func Read(r io.Reader, opts Options) ([]model.Scoresheet, error) {
	header, lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	return Parse(header, lines, opts)
}

// ReadLines returns the header line and the data lines of an export.
func ReadLines(r io.Reader) (string, []string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var header string
	var lines []string
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			header = strings.TrimPrefix(line, "\ufeff")
			first = false
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return "", nil, fmt.Errorf("read export: %w", err)
	}
	if first || strings.TrimSpace(header) == "" {
		return "", nil, ErrEmptyInput
	}
	return header, lines, nil
}

func parseNumber(field, v string) (float64, error) {
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("field %q: %q is not a number", field, v)
	}
	return n, nil
}

func split(line string, opts Options) ([]string, error) {
	if !opts.Strict {
		return splitNaive(line, opts.delim()), nil
	}
	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = opts.delim()
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	rec, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []string{""}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("split row: %w", err)
	}
	return rec, nil
}

func splitNaive(line string, delim rune) []string {
	return strings.Split(line, string(delim))
}

// cleanValue strips one leading and one trailing double quote, then surrounding
// whitespace. Interior quotes are left alone.
func cleanValue(s string) string {
	if len(s) > 0 && s[0] == '"' {
		s = s[1:]
	}
	if len(s) > 0 && s[len(s)-1] == '"' {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s)
}

func trimLineEnd(s string) string {
	return strings.TrimRight(s, "\r\n")
}
