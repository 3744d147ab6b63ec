package analysis

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/zipreport/internal/model"
)

type sheetOpt func(*model.Scoresheet)

func inClass(c string) sheetOpt { return func(s *model.Scoresheet) { s.ClassName = c } }
func version(v string) sheetOpt { return func(s *model.Scoresheet) { s.KeyVersion = v } }
func percent(p float64) sheetOpt { return func(s *model.Scoresheet) { s.Percent = p } }
func earned(e float64) sheetOpt { return func(s *model.Scoresheet) { s.Earned = e } }
func zipID(id string) sheetOpt { return func(s *model.Scoresheet) { s.ZipID = id } }
func answers(pairs ...string) sheetOpt {
	return func(s *model.Scoresheet) {
		s.Responses = nil
		for i := 0; i+1 < len(pairs); i += 2 {
			s.Responses = append(s.Responses, model.Response{
				Question: i/2 + 1, Answer: pairs[i], Correct: pairs[i+1],
			})
		}
		s.NumQuestions = len(s.Responses)
	}
}

func newSheet(first, last string, opts ...sheetOpt) model.Scoresheet {
	s := model.Scoresheet{FirstName: first, LastName: last, ClassName: "Period 1", Possible: 20}
	for _, o := range opts {
		o(&s)
	}
	return s
}

func TestCollectionSortOrder(t *testing.T) {
	c := NewCollection([]model.Scoresheet{
		newSheet("Alan", "Turing"),
		newSheet("Ada", "Lovelace", zipID("first")),
		newSheet("Grace", "Hopper"),
		newSheet("Ada", "Lovelace", zipID("second")),
		newSheet("Aaron", "Lovelace"),
	})

	var got []string
	for _, s := range c.Sheets() {
		got = append(got, s.DisplayName()+"/"+s.ZipID)
	}
	assert.Equal(t, []string{
		"Hopper, Grace/",
		"Lovelace, Aaron/",
		"Lovelace, Ada/first",
		"Lovelace, Ada/second",
		"Turing, Alan/",
	}, got)
}

func TestCollectionDoesNotReorderInput(t *testing.T) {
	in := []model.Scoresheet{newSheet("B", "B"), newSheet("A", "A")}
	NewCollection(in)
	assert.Equal(t, "B", in[0].LastName)
}

func TestCollectionViews(t *testing.T) {
	c := NewCollection([]model.Scoresheet{
		newSheet("A", "One", inClass("Period 2"), version("B"), earned(17), percent(84.5)),
		newSheet("B", "Two", inClass("Period 1"), version("A"), earned(17.5), percent(85.5)),
		newSheet("C", "Three", inClass("Period 2"), version(""), earned(3), percent(15)),
		newSheet("D", "Four", inClass("Period 1"), version("A"), earned(20), percent(100)),
	})

	assert.Equal(t, []string{"Period 1", "Period 2"}, c.Classes())
	assert.Equal(t, []string{"", "A", "B"}, c.Versions())

	// Sorted: Four, One, Three, Two.
	assert.Equal(t, []float64{20, 17, 3, 17.5}, c.RawScores())
	assert.Equal(t, []float64{100, 84, 15, 86}, c.Percentages())
	assert.Len(t, c.Percentages(), c.Len())
	assert.Len(t, c.RawScores(), c.Len())

	p1 := c.ByClass("Period 1")
	require.Len(t, p1, 2)
	assert.Equal(t, "Four", p1[0].LastName)
	assert.Equal(t, "Two", p1[1].LastName)

	assert.Len(t, c.ByVersion("A"), 2)
	assert.Len(t, c.ByVersion(""), 1)
	assert.Empty(t, c.ByVersion("Z"))
	assert.Empty(t, c.ByClass("period 1"))

	first, ok := c.First()
	require.True(t, ok)
	assert.Equal(t, "Four", first.LastName)

	q1, q3, err := c.Quartiles(c.RawScores())
	require.NoError(t, err)
	assert.Equal(t, 10.0, q1)
	assert.Equal(t, 18.75, q3)
}

func TestEmptyCollection(t *testing.T) {
	c := NewCollection(nil)
	_, ok := c.First()
	assert.False(t, ok)
	assert.Empty(t, c.Classes())
	assert.Empty(t, Difficulty(c))
	assert.Empty(t, Flags(c))
}

func TestRankVersionStableTies(t *testing.T) {
	// Ten students; question 1 and 3 are missed five times, question 2 twice.
	var sheets []model.Scoresheet
	for i := 0; i < 10; i++ {
		a1, a2, a3 := "A", "A", "A"
		if i < 5 {
			a1, a3 = "B", "C"
		}
		if i < 2 {
			a2 = "D"
		}
		sheets = append(sheets, newSheet("S", strconv.Itoa(i), answers(a1, "A", a2, "A", a3, "A")))
	}

	vd := RankVersion("", sheets)
	require.Len(t, vd.Records, 3)
	assert.Equal(t, 1, vd.Records[0].Question)
	assert.Equal(t, 3, vd.Records[1].Question)
	assert.Equal(t, 2, vd.Records[2].Question)
	assert.Equal(t, 5, vd.Records[0].Misses)
	assert.Equal(t, 5, vd.Records[1].Misses)
	assert.Equal(t, 2, vd.Records[2].Misses)
	assert.False(t, vd.Classified)
	assert.Empty(t, vd.Hardest)
}

func TestRankVersionSkipsUnscoredQuestions(t *testing.T) {
	sheets := []model.Scoresheet{
		newSheet("A", "A", answers("A", "A", "B", "", "C", "D")),
		newSheet("B", "B", answers("B", "A", "", "", "D", "D")),
	}
	vd := RankVersion("A", sheets)
	require.Len(t, vd.Records, 2)
	assert.Equal(t, model.DifficultyRecord{Question: 1, Misses: 1, MissPercent: 33.3}, vd.Records[0])
	assert.Equal(t, model.DifficultyRecord{Question: 3, Misses: 1, MissPercent: 33.3}, vd.Records[1])
}

func TestRankVersionClassification(t *testing.T) {
	misses := []int{10, 9, 8, 7, 6, 6, 5, 4, 3, 2, 1, 1}
	var sheets []model.Scoresheet
	for j := 0; j < 20; j++ {
		var pairs []string
		for _, m := range misses {
			if j < m {
				pairs = append(pairs, "B", "A")
			} else {
				pairs = append(pairs, "A", "A")
			}
		}
		sheets = append(sheets, newSheet("S", strconv.Itoa(j), answers(pairs...)))
	}

	vd := RankVersion("A", sheets)
	require.Len(t, vd.Records, 12)
	require.True(t, vd.Classified)
	assert.Equal(t, 50.0, vd.HardThreshold)
	assert.Equal(t, 16.7, vd.EasyThreshold)

	var hardest, easiest []int
	for _, r := range vd.Hardest {
		hardest = append(hardest, r.Question)
	}
	for _, r := range vd.Easiest {
		easiest = append(easiest, r.Question)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, hardest)
	assert.Equal(t, []int{10, 11, 12}, easiest)
}

func TestDifficultyPartitionsByVersion(t *testing.T) {
	c := NewCollection([]model.Scoresheet{
		newSheet("A", "A", version("B"), answers("A", "A", "C", "B")),
		newSheet("B", "B", version("A"), answers("X", "A", "B", "B")),
		newSheet("C", "C", version("A"), answers("X", "A", "B", "B")),
	})
	got := Difficulty(c)
	require.Len(t, got, 2)

	assert.Equal(t, "A", got[0].Version)
	assert.Equal(t, 2, got[0].Records[0].Misses)
	assert.Equal(t, 1, got[0].Records[0].Question)

	assert.Equal(t, "B", got[1].Version)
	assert.Equal(t, 2, got[1].Records[0].Question)
	assert.Equal(t, 1, got[1].Records[0].Misses)
}

func TestFlaggedQuestions(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		correct string
		flagged bool
	}{
		{"double mark", "A", "AB", true},
		{"wrong single answer", "A", "B", false},
		{"blank", "", "B", true},
		{"correct", "C", "C", false},
		{"unscored", "AB", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlaggedQuestions(newSheet("A", "A", answers(tt.answer, tt.correct)))
			if tt.flagged {
				assert.Equal(t, []int{1}, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestFlagsGroupedByClass(t *testing.T) {
	c := NewCollection([]model.Scoresheet{
		newSheet("Zed", "Adams", inClass("Period 2"), answers("", "A", "B", "B", "AC", "C")),
		newSheet("Amy", "Brown", inClass("Period 1"), answers("A", "A")),
		newSheet("Bo", "Clark", inClass("Period 1"), answers("", "A")),
	})
	assert.Equal(t, []model.FlaggedEntry{
		{ClassName: "Period 1", StudentName: "Clark, Bo", Questions: []int{1}},
		{ClassName: "Period 2", StudentName: "Adams, Zed", Questions: []int{1, 3}},
	}, Flags(c))
}

func TestDistribution(t *testing.T) {
	c := NewCollection([]model.Scoresheet{
		newSheet("a", "a", percent(0)),
		newSheet("b", "b", percent(4.4)),
		newSheet("c", "c", percent(5)),
		newSheet("d", "d", percent(94.5)),
		newSheet("e", "e", percent(99.6)),
		newSheet("f", "f", percent(100)),
	})
	buckets := Distribution(c)
	require.Len(t, buckets, 21)
	assert.Equal(t, Bucket{Label: "0-4", Count: 2}, buckets[0])
	assert.Equal(t, Bucket{Label: "5-9", Count: 1}, buckets[1])
	assert.Equal(t, Bucket{Label: "90-94", Count: 1}, buckets[18])
	assert.Equal(t, Bucket{Label: "95-99", Count: 0}, buckets[19])
	assert.Equal(t, Bucket{Label: "100", Count: 2}, buckets[20])

	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, c.Len(), total)
}
