package models

// Stats summarizes a pipeline run
type Stats struct {
	RunID             string             `json:"run_id"`
	InputRows         int                `json:"input_rows"`
	RenamedColumns    int                `json:"renamed_columns"`
	AddedColumns      int                `json:"added_columns"`
	FailedRows        int                `json:"failed_rows"`
	ExactDuplicates   int                `json:"exact_duplicates"`
	FuzzyDuplicates   int                `json:"fuzzy_duplicates"`
	TypesInferred     int                `json:"types_inferred"`
	OutputRows        int                `json:"output_rows"`
	ByState           map[string]int     `json:"by_state"`
	ByType            map[string]int     `json:"by_type"`
	BySource          map[string]int     `json:"by_source"`
	Completeness      float64            `json:"completeness"`
	FieldCompleteness map[string]float64 `json:"field_completeness"`
}

// Result is the output of a pipeline run
type Result struct {
	Listings []*Listing `json:"listings"`
	Stats    Stats      `json:"stats"`
}

// Distribution counts listings by the value of a field. Unknown values are skipped.
func Distribution(listings []*Listing, f Field) map[string]int {
	dist := make(map[string]int)
	for _, l := range listings {
		v := l.Get(f)
		if IsMissing(v) {
			continue
		}
		dist[v]++
	}
	return dist
}

// Summarize fills the distribution and completeness figures of stats from listings
func Summarize(stats *Stats, listings []*Listing) {
	stats.OutputRows = len(listings)
	stats.ByState = Distribution(listings, FieldState)
	stats.ByType = Distribution(listings, FieldType)
	stats.BySource = Distribution(listings, FieldSource)
	stats.FieldCompleteness = make(map[string]float64, len(Fields))

	if len(listings) == 0 {
		for _, f := range Fields {
			stats.FieldCompleteness[string(f)] = 0
		}
		stats.Completeness = 0
		return
	}

	filled := 0
	for _, f := range Fields {
		count := 0
		for _, l := range listings {
			if !IsMissing(l.Get(f)) {
				count++
			}
		}
		filled += count
		stats.FieldCompleteness[string(f)] = percent(count, len(listings))
	}
	stats.Completeness = percent(filled, len(listings)*len(Fields))
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
