package analysis

import (
	"sort"

	"github.com/pavelanni/zipreport/internal/model"
	"github.com/pavelanni/zipreport/internal/stats"
)

// classifyAbove is the number of questions a version needs before the report
// splits them into hardest and easiest.
const classifyAbove = 10

// Rank positions that set the thresholds: the 5th hardest question and the
// 3rd easiest question.
const (
	hardRank = 4
	easyRank = 3
)

// VersionDifficulty is the difficulty ranking for one answer key version.
type VersionDifficulty struct {
	Version string                   `json:"version"`
	Records []model.DifficultyRecord `json:"records"`

	// Classified is false when the version has too few questions; then Records
	// is the whole listing and the threshold fields are zero.
	Classified    bool                     `json:"classified"`
	HardThreshold float64                  `json:"hard_threshold,omitempty"`
	EasyThreshold float64                  `json:"easy_threshold,omitempty"`
	Hardest       []model.DifficultyRecord `json:"hardest,omitempty"`
	Easiest       []model.DifficultyRecord `json:"easiest,omitempty"`
}

// Difficulty ranks questions by miss count for every key version.
func Difficulty(c *Collection) []VersionDifficulty {
	versions := c.Versions()
	out := make([]VersionDifficulty, 0, len(versions))
	for _, v := range versions {
		out = append(out, RankVersion(v, c.ByVersion(v)))
	}
	return out
}

// RankVersion counts misses per question across sheets that share a key version.
// Questions without an answer key are skipped. Records are sorted by miss count,
// highest first; ties keep question order.
func RankVersion(version string, sheets []model.Scoresheet) VersionDifficulty {
	vd := VersionDifficulty{Version: version}
	if len(sheets) == 0 {
		return vd
	}
	numQuestions := sheets[0].NumQuestions

	misses := make(map[int]int)
	var order []int
	for _, s := range sheets {
		for _, r := range s.Responses {
			if !r.Scored() {
				continue
			}
			if _, ok := misses[r.Question]; !ok {
				misses[r.Question] = 0
				order = append(order, r.Question)
			}
			if r.Answer != r.Correct {
				misses[r.Question]++
			}
		}
	}

	records := make([]model.DifficultyRecord, 0, len(order))
	for _, q := range order {
		records = append(records, model.DifficultyRecord{
			Question:    q,
			Misses:      misses[q],
			MissPercent: missPercent(misses[q], numQuestions),
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Misses > records[j].Misses
	})
	vd.Records = records

	if len(records) > classifyAbove {
		vd.Classified = true
		vd.HardThreshold = records[hardRank].MissPercent
		vd.EasyThreshold = records[len(records)-easyRank].MissPercent
		for _, r := range records {
			if r.MissPercent >= vd.HardThreshold {
				vd.Hardest = append(vd.Hardest, r)
			}
			if r.MissPercent <= vd.EasyThreshold {
				vd.Easiest = append(vd.Easiest, r)
			}
		}
	}
	return vd
}

// missPercent is relative to the question count of the sheet, not to the
// number of students in the version.
func missPercent(misses, numQuestions int) float64 {
	if numQuestions <= 0 {
		return 0
	}
	return stats.Round(float64(misses)/float64(numQuestions)*100, 1)
}
