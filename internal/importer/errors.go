package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when an export contains no header line.
	ErrEmptyInput = errors.New("export is empty")
	// ErrNoQuestions is returned when the header describes zero or fewer questions.
	ErrNoQuestions = errors.New("export contains no questions")
	// ErrKeyColumns is returned when the header has fewer answer key columns than questions.
	ErrKeyColumns = errors.New("not enough answer key columns")
	// ErrNoRecords is returned when an export has a header but no student rows.
	ErrNoRecords = errors.New("export contains no student records")
)

// MissingFieldError reports a required column that is absent after header normalization.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// RecordParseError reports a data row that cannot be turned into a scoresheet.
type RecordParseError struct {
	Line int    // 1-based line number in the export, header is line 1
	Text string // raw row
	Err  error
}

func (e *RecordParseError) Error() string {
	return fmt.Sprintf("line %d: %v (row: %q)", e.Line, e.Err, truncate(e.Text, 80))
}

func (e *RecordParseError) Unwrap() error {
	return e.Err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
