package logbook

// PageSize is the number of results the provider returns per full page.
const PageSize = 50

// Result is one logged workout as the provider returns it.
type Result map[string]any

// Distance is the distance in meters; anything that is not a number counts as zero.
func (r Result) Distance() float64 {
	value, ok := r["distance"].(float64)
	if !ok {
		return 0
	}
	return value
}

// Profile is the provider's user profile, passed through unchanged.
type Profile map[string]any

type resultPage struct {
	Data []Result       `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

type profileEnvelope struct {
	Data Profile `json:"data"`
}

// TotalMeters sums the distance of all results.
func TotalMeters(results []Result) float64 {
	total := 0.0
	for _, r := range results {
		total += r.Distance()
	}
	return total
}
