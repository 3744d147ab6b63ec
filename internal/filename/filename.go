// Package filename derives report file names from quiz metadata.
package filename

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// DefaultTitle replaces a quiz title with no letters or digits.
const DefaultTitle = "ZipGradeReport"

// UnrecognizedDateFormatError is returned when an export date matches none of
// the known layouts.
type UnrecognizedDateFormatError struct {
	Value string
}

func (e *UnrecognizedDateFormatError) Error() string {
	return fmt.Sprintf("unrecognized date format %q", e.Value)
}

var months = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// Derive returns "<title>_<class>_<yyyymmdd><ext>" with every segment sanitized.
// An empty class leaves its slot empty, which yields a double underscore.
func Derive(title, class, exported, ext string) (string, error) {
	date, err := ExportDate(exported)
	if err != nil {
		return "", err
	}
	t := Sanitize(title)
	if t == "" {
		t = DefaultTitle
	}
	name := strings.Join([]string{t, Sanitize(class), date}, "_")
	return name + ext, nil
}

// Fallback is the name used when the export date cannot be read.
func Fallback(ext string) string {
	return DefaultTitle + ext
}

// ExportDate converts a ZipGrade export timestamp to yyyymmdd. Accepted layouts:
//
//	2019-09-18 00:00:00    (web export)
//	09/18/2019             (spreadsheet re-save)
//	May 02 2018 02:14 PM   (mobile app, month abbreviated or spelled out)
func ExportDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	bad := &UnrecognizedDateFormatError{Value: s}

	var y, m, d string
	switch {
	case strings.Contains(s, "-"):
		p := strings.Split(s, "-")
		if len(p) < 3 || len(p[2]) < 1 {
			return "", bad
		}
		y, m, d = p[0], p[1], prefix(p[2], 2)
	case strings.Contains(s, "/"):
		p := strings.Split(s, "/")
		if len(p) < 3 {
			return "", bad
		}
		y, m, d = prefix(strings.TrimSpace(p[2]), 4), p[0], p[1]
	default:
		p := strings.Fields(s)
		if len(p) < 3 {
			return "", bad
		}
		n, ok := months[strings.ToLower(strings.TrimSuffix(p[0], "."))]
		if !ok {
			return "", bad
		}
		y, m, d = p[2], strconv.Itoa(n), strings.TrimSuffix(p[1], ",")
	}

	yy, err1 := strconv.Atoi(strings.TrimSpace(y))
	mm, err2 := strconv.Atoi(strings.TrimSpace(m))
	dd, err3 := strconv.Atoi(strings.TrimSpace(d))
	if err1 != nil || err2 != nil || err3 != nil || mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return "", bad
	}
	return fmt.Sprintf("%04d%02d%02d", yy, mm, dd), nil
}

// Sanitize keeps letters and digits and collapses every other run of characters
// into a single underscore. The result never starts or ends with an underscore.
func Sanitize(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
