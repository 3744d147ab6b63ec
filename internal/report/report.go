// Package report assembles the analytical report for one ZipGrade export.
package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pavelanni/zipreport/internal/analysis"
	"github.com/pavelanni/zipreport/internal/model"
	"github.com/pavelanni/zipreport/internal/stats"
)

// ErrEmptyCollection is returned when there are no scoresheets to report on.
var ErrEmptyCollection = errors.New("no scoresheets to report on")

// Report is the complete analytical report. Renderers read it and nothing else.
type Report struct {
	ID           string    `json:"id"`
	GeneratedAt  time.Time `json:"generated_at"`
	QuizName     string    `json:"quiz_name"`
	DateCreated  string    `json:"date_created"`
	DateExported string    `json:"date_exported"`
	Classes      []string  `json:"classes"`

	Stats        Stats                        `json:"stats"`
	Distribution []analysis.Bucket            `json:"distribution"`
	Difficulty   []analysis.VersionDifficulty `json:"difficulty"`
	Rosters      []Roster                     `json:"rosters"`
	Students     []Student                    `json:"students"`
	Flagged      []model.FlaggedEntry         `json:"flagged"`
}

// Stats summarizes raw points and rounded percentages over all students.
type Stats struct {
	Count          int           `json:"count"`
	PossiblePoints float64       `json:"possible_points"`
	Raw            stats.Summary `json:"raw"`
	Percent        stats.Summary `json:"percent"`
}

// Roster lists the students of one class.
type Roster struct {
	ClassName string      `json:"class_name"`
	Entries   []RosterRow `json:"entries"`
}

// RosterRow is one line of a class roster.
type RosterRow struct {
	Name    string  `json:"name"`
	ZipID   string  `json:"zip_id"`
	Earned  float64 `json:"earned"`
	Percent float64 `json:"percent"`
}

// Student is an individual score report.
type Student struct {
	Name       string           `json:"name"`
	ZipID      string           `json:"zip_id"`
	ClassName  string           `json:"class_name"`
	QuizName   string           `json:"quiz_name"`
	KeyVersion string           `json:"key_version,omitempty"`
	Earned     float64          `json:"earned"`
	Possible   float64          `json:"possible"`
	Percent    float64          `json:"percent"`
	Responses  []model.Response `json:"responses"`
}

// Build computes every section of the report. The statistics, difficulty,
// flag and distribution passes run concurrently over the read-only collection;
// the first failure cancels the rest and no report is returned.
func Build(ctx context.Context, c *analysis.Collection) (*Report, error) {
	first, ok := c.First()
	if !ok {
		return nil, ErrEmptyCollection
	}

	r := &Report{
		ID:           uuid.NewString(),
		GeneratedAt:  time.Now().UTC(),
		QuizName:     first.QuizName,
		DateCreated:  first.DateCreated,
		DateExported: first.DateExported,
		Classes:      c.Classes(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := buildStats(c)
		if err != nil {
			return fmt.Errorf("statistics: %w", err)
		}
		r.Stats = s
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Difficulty = analysis.Difficulty(c)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Flagged = analysis.Flags(c)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Distribution = analysis.Distribution(c)
		return nil
	})
	g.Go(func() error {
		r.Rosters = buildRosters(c)
		r.Students = buildStudents(c)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	return r, nil
}

func buildStats(c *analysis.Collection) (Stats, error) {
	raw, err := stats.Summarize(c.RawScores())
	if err != nil {
		return Stats{}, fmt.Errorf("raw scores: %w", err)
	}
	pct, err := stats.Summarize(c.Percentages())
	if err != nil {
		return Stats{}, fmt.Errorf("percentages: %w", err)
	}
	first, _ := c.First()
	return Stats{
		Count:          c.Len(),
		PossiblePoints: first.Possible,
		Raw:            raw,
		Percent:        pct,
	}, nil
}

func buildRosters(c *analysis.Collection) []Roster {
	classes := c.Classes()
	out := make([]Roster, 0, len(classes))
	for _, class := range classes {
		ro := Roster{ClassName: class}
		for _, s := range c.ByClass(class) {
			ro.Entries = append(ro.Entries, RosterRow{
				Name:    s.DisplayName(),
				ZipID:   s.ZipID,
				Earned:  s.Earned,
				Percent: math.RoundToEven(s.Percent),
			})
		}
		out = append(out, ro)
	}
	return out
}

func buildStudents(c *analysis.Collection) []Student {
	sheets := c.Sheets()
	out := make([]Student, 0, len(sheets))
	for _, s := range sheets {
		out = append(out, Student{
			Name:       s.DisplayName(),
			ZipID:      s.ZipID,
			ClassName:  s.ClassName,
			QuizName:   s.QuizName,
			KeyVersion: s.KeyVersion,
			Earned:     s.Earned,
			Possible:   s.Possible,
			Percent:    math.RoundToEven(s.Percent),
			Responses:  s.ScoredResponses(),
		})
	}
	return out
}
