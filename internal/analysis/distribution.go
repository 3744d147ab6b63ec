package analysis

import "fmt"

const (
	bucketWidth = 5
	bucketCount = 100/bucketWidth + 1 // the last bucket holds exactly 100%
)

// Bucket is one bar of the grade distribution.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Distribution counts students per five-point percentage band:
// 0-4, 5-9, ..., 95-99 and 100. Scores above 100 land in the last band.
func Distribution(c *Collection) []Bucket {
	buckets := make([]Bucket, bucketCount)
	for i := range buckets {
		low := i * bucketWidth
		if i == bucketCount-1 {
			buckets[i].Label = fmt.Sprint(low)
		} else {
			buckets[i].Label = fmt.Sprintf("%d-%d", low, low+bucketWidth-1)
		}
	}
	for _, p := range c.Percentages() {
		idx := int(p) / bucketWidth
		if idx >= bucketCount {
			idx = bucketCount - 1
		}
		if idx < 0 {
			idx = 0
		}
		buckets[idx].Count++
	}
	return buckets
}
