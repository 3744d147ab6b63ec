package importer

import (
	"regexp"
	"strings"
)

// Canonical field names used by the ZipGrade web export. Everything downstream of
// NormalizeHeader assumes these names.
const (
	FieldQuizName       = "QuizName"
	FieldQuizClass      = "QuizClass"
	FieldFirstName      = "FirstName"
	FieldLastName       = "LastName"
	FieldStudentID      = "StudentID"
	FieldCustomID       = "CustomID"
	FieldEarnedPoints   = "Earned Points"
	FieldPossiblePoints = "Possible Points"
	FieldPercentCorrect = "PercentCorrect"
	FieldQuizCreated    = "QuizCreated"
	FieldDataExported   = "DataExported"
	FieldKeyVersion     = "Key Version"

	studentPrefix = "Stu"
	keyPrefix     = "PriKey"
)

// appMarker only appears in headers written by the mobile app.
const appMarker = "ZipGradeID"

// requiredFields are the fixed metadata columns, in the order they are reported
// when missing.
var requiredFields = []string{
	FieldQuizName,
	FieldQuizClass,
	FieldFirstName,
	FieldLastName,
	FieldStudentID,
	FieldCustomID,
	FieldEarnedPoints,
	FieldPossiblePoints,
	FieldPercentCorrect,
	FieldQuizCreated,
	FieldDataExported,
	FieldKeyVersion,
}

// metadataColumns and columnsPerQuestion describe the export layout.
const (
	metadataColumns    = 12
	columnsPerQuestion = 4
)

var appRenames = map[string]string{
	"ZipGradeID":  FieldStudentID,
	"ExternalID":  FieldCustomID,
	"EarnedPts":   FieldEarnedPoints,
	"PossiblePts": FieldPossiblePoints,
	"KeyVersion":  FieldKeyVersion,
}

var appNumbered = regexp.MustCompile(`^(Key|PossPt)(\d+)$`)

var appNumberedPrefix = map[string]string{
	"Key":    keyPrefix,
	"PossPt": "Mark",
}

// IsAppDialect reports whether the header line was written by the mobile app.
func IsAppDialect(header string, delim rune) bool {
	for _, f := range splitNaive(header, delim) {
		if cleanValue(f) == appMarker {
			return true
		}
	}
	return false
}

// NormalizeHeader rewrites a mobile app header to the canonical web export names.
// Headers in the web dialect are returned unchanged. Only whole field tokens are
// rewritten, so a second application is a no-op.
func NormalizeHeader(header string, delim rune) string {
	if !IsAppDialect(header, delim) {
		return header
	}
	fields := splitNaive(header, delim)
	for i, f := range fields {
		fields[i] = renameAppField(cleanValue(f))
	}
	return strings.Join(fields, string(delim))
}

func renameAppField(name string) string {
	if canonical, ok := appRenames[name]; ok {
		return canonical
	}
	if m := appNumbered.FindStringSubmatch(name); m != nil {
		return appNumberedPrefix[m[1]] + m[2]
	}
	return name
}
