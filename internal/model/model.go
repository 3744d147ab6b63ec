package model

import (
	"context"
	"strings"
)

// Format names an output document format.
type Format string

const (
	// FormatHTML is a single printable HTML page.
	FormatHTML Format = "html"
	// FormatXLSX is an Excel workbook.
	FormatXLSX Format = "xlsx"
	// FormatJSON is the raw report model.
	FormatJSON Format = "json"
)

// Response is one question slot on a student's scoresheet.
type Response struct {
	Question int    `json:"question"`
	Answer   string `json:"answer"`
	Correct  string `json:"correct"`
}

// Scored reports whether the question was administered to the student.
// An empty answer key means the slot belongs to another key version.
func (r Response) Scored() bool {
	return r.Correct != ""
}

// Scoresheet holds one student's quiz result as exported by ZipGrade.
type Scoresheet struct {
	QuizName   string `json:"quiz_name"`
	ClassName  string `json:"class_name"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	ZipID      string `json:"zip_id"`
	ExternalID string `json:"external_id,omitempty"`

	// Score values exactly as they appear in the export.
	EarnedPoints   string `json:"earned_points"`
	PossiblePoints string `json:"possible_points"`
	PercentCorrect string `json:"percent_correct"`

	// Parsed score values.
	Earned   float64 `json:"-"`
	Possible float64 `json:"-"`
	Percent  float64 `json:"-"`

	DateCreated  string `json:"date_created"`
	DateExported string `json:"date_exported"`
	KeyVersion   string `json:"key_version,omitempty"`

	NumQuestions int        `json:"num_questions"`
	Responses    []Response `json:"responses"`
}

// DisplayName returns "Last, First".
func (s Scoresheet) DisplayName() string {
	return s.LastName + ", " + s.FirstName
}

// ScoredResponses returns the responses that carry an answer key.
func (s Scoresheet) ScoredResponses() []Response {
	var out []Response
	for _, r := range s.Responses {
		if r.Scored() {
			out = append(out, r)
		}
	}
	return out
}

// DifficultyRecord holds miss statistics for one question within a key version.
type DifficultyRecord struct {
	Question    int     `json:"question"`
	Misses      int     `json:"misses"`
	MissPercent float64 `json:"miss_percent"`
}

// FlaggedEntry lists the questions whose scanned answers look suspicious for one student.
type FlaggedEntry struct {
	ClassName   string `json:"class_name"`
	StudentName string `json:"student_name"`
	Questions   []int  `json:"questions"`
}

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}

// ParseFormat normalizes a user supplied format name.
func ParseFormat(s string) Format {
	return Format(strings.ToLower(strings.TrimSpace(s)))
}
