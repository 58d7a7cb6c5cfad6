package stats

import "github.com/zhouzirui/mind-chat/backend/internal/model/mood"

// Stats 是某用户情绪记录的统计结果，所有分类都会出现（零填充）。
type Stats struct {
	MainCounts      map[mood.Main]int     `json:"mainMoodCounts"`
	MainPercentages map[mood.Main]float64 `json:"mainMoodStats"`
	// Sub maps are keyed by "main:sub".
	SubCounts      map[string]int     `json:"subMoodCounts"`
	SubPercentages map[string]float64 `json:"subMoodStats"`
	Total          int                `json:"total"`
}

// Aggregate counts records per main mood and per (main, sub) pair.
// Records with an unknown main are ignored entirely; records with a known
// main but a foreign sub count toward the main only. Percentages are relative
// to the number of records with a known main.
//
// sum(SubCounts[main:*]) == MainCounts[main] therefore holds only when every
// record carries a valid pair. mood.Service and the classifier both validate
// before writing, so only rows written outside this service can break it.
func Aggregate(records []mood.Record) Stats {
	out := Stats{
		MainCounts:      make(map[mood.Main]int),
		MainPercentages: make(map[mood.Main]float64),
		SubCounts:       make(map[string]int),
		SubPercentages:  make(map[string]float64),
	}
	for _, main := range mood.Mains() {
		out.MainCounts[main] = 0
	}
	for _, pair := range mood.Pairs() {
		out.SubCounts[pair.Key()] = 0
	}

	for _, rec := range records {
		if _, ok := out.MainCounts[rec.Main]; !ok {
			continue
		}
		out.MainCounts[rec.Main]++
		out.Total++
		if mood.Contains(rec.Main, rec.Sub) {
			out.SubCounts[rec.Pair().Key()]++
		}
	}

	for main, n := range out.MainCounts {
		out.MainPercentages[main] = percent(n, out.Total)
	}
	for key, n := range out.SubCounts {
		out.SubPercentages[key] = percent(n, out.Total)
	}
	return out
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}
