package domain

// Interval is a labelled time span in seconds, used for both words and phones.
type Interval struct {
	Label    string  `json:"label"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

// AlignmentResult holds the fabricated timings for one entry.
//
// Word intervals are contiguous and cover [0, TotalDuration]. The phones of
// each word are contiguous and cover exactly that word's span, so
// TotalDuration equals the end of the last phone.
type AlignmentResult struct {
	EntryID              string     `json:"entry_id"`
	Identifier           string     `json:"identifier"`
	Transcript           string     `json:"transcript"`
	TotalDuration        float64    `json:"total_duration"`
	Words                []Interval `json:"words"`
	Phones               []Interval `json:"phones"`
	AverageWordDuration  float64    `json:"average_word_duration"`
	AveragePhoneDuration float64    `json:"average_phone_duration"`
}

// WordCount returns the number of word intervals.
func (r *AlignmentResult) WordCount() int {
	return len(r.Words)
}

// PhoneCount returns the number of phone intervals.
func (r *AlignmentResult) PhoneCount() int {
	return len(r.Phones)
}

// MeanDuration returns the mean Duration of intervals, or 0 for none.
func MeanDuration(intervals []Interval) float64 {
	if len(intervals) == 0 {
		return 0
	}
	var sum float64
	for _, iv := range intervals {
		sum += iv.Duration
	}
	return sum / float64(len(intervals))
}
