// Package analysis derives class, version, difficulty and flag views from a
// parsed set of scoresheets. Nothing in this package mutates the sheets.
package analysis

import (
	"math"
	"sort"

	"github.com/pavelanni/zipreport/internal/model"
	"github.com/pavelanni/zipreport/internal/stats"
)

// Collection holds every scoresheet of one export sorted by last name, then first name.
type Collection struct {
	sheets []model.Scoresheet
}

// NewCollection copies and sorts the given sheets. Students sharing a full name
// keep their export order.
func NewCollection(sheets []model.Scoresheet) *Collection {
	cp := make([]model.Scoresheet, len(sheets))
	copy(cp, sheets)
	sort.SliceStable(cp, func(i, j int) bool {
		if cp[i].LastName != cp[j].LastName {
			return cp[i].LastName < cp[j].LastName
		}
		return cp[i].FirstName < cp[j].FirstName
	})
	return &Collection{sheets: cp}
}

// Len returns the number of scoresheets.
func (c *Collection) Len() int {
	return len(c.sheets)
}

// Sheets returns a copy of the sorted scoresheets.
func (c *Collection) Sheets() []model.Scoresheet {
	cp := make([]model.Scoresheet, len(c.sheets))
	copy(cp, c.sheets)
	return cp
}

// First returns the first sheet in sort order; report metadata is read from it.
func (c *Collection) First() (model.Scoresheet, bool) {
	if len(c.sheets) == 0 {
		return model.Scoresheet{}, false
	}
	return c.sheets[0], true
}

// Classes returns the distinct class names, sorted.
func (c *Collection) Classes() []string {
	return distinct(c.sheets, func(s model.Scoresheet) string { return s.ClassName })
}

// Versions returns the distinct answer key versions, sorted. An export without
// versions yields a single empty string.
func (c *Collection) Versions() []string {
	return distinct(c.sheets, func(s model.Scoresheet) string { return s.KeyVersion })
}

// RawScores returns earned points in sheet order.
func (c *Collection) RawScores() []float64 {
	out := make([]float64, len(c.sheets))
	for i, s := range c.sheets {
		out[i] = s.Earned
	}
	return out
}

// Percentages returns percent correct rounded to whole numbers (half to even),
// in sheet order.
func (c *Collection) Percentages() []float64 {
	out := make([]float64, len(c.sheets))
	for i, s := range c.sheets {
		out[i] = math.RoundToEven(s.Percent)
	}
	return out
}

// ByClass returns the sheets of one class in collection order.
func (c *Collection) ByClass(name string) []model.Scoresheet {
	return filter(c.sheets, func(s model.Scoresheet) bool { return s.ClassName == name })
}

// ByVersion returns the sheets graded with one key version in collection order.
func (c *Collection) ByVersion(v string) []model.Scoresheet {
	return filter(c.sheets, func(s model.Scoresheet) bool { return s.KeyVersion == v })
}

// Quartiles returns Q1 and Q3 of values using the exclusive-median method.
func (c *Collection) Quartiles(values []float64) (q1, q3 float64, err error) {
	return stats.Quartiles(values)
}

func distinct(sheets []model.Scoresheet, key func(model.Scoresheet) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range sheets {
		k := key(s)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func filter(sheets []model.Scoresheet, keep func(model.Scoresheet) bool) []model.Scoresheet {
	var out []model.Scoresheet
	for _, s := range sheets {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
