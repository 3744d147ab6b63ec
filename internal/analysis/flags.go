package analysis

import (
	"unicode/utf8"

	"github.com/pavelanni/zipreport/internal/model"
)

// FlaggedQuestions returns the scored questions whose answer length differs from
// the key length. A blank answer against a one-letter key, or a double mark, is
// the usual cause. Wrong answers of the right length are not flagged.
func FlaggedQuestions(s model.Scoresheet) []int {
	var out []int
	for _, r := range s.Responses {
		if !r.Scored() {
			continue
		}
		if utf8.RuneCountInString(r.Answer) != utf8.RuneCountInString(r.Correct) {
			out = append(out, r.Question)
		}
	}
	return out
}

// Flags lists students with at least one suspicious scan, class by class.
func Flags(c *Collection) []model.FlaggedEntry {
	var out []model.FlaggedEntry
	for _, class := range c.Classes() {
		for _, s := range c.ByClass(class) {
			qs := FlaggedQuestions(s)
			if len(qs) == 0 {
				continue
			}
			out = append(out, model.FlaggedEntry{
				ClassName:   class,
				StudentName: s.DisplayName(),
				Questions:   qs,
			})
		}
	}
	return out
}
