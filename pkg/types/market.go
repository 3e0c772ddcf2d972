package types

import "time"

// Candle is a single price/volume sample at a fixed cadence.
// High/low are not carried: the analysis pipeline approximates intrabar
// range from consecutive closes.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Series is an ordered candle sequence with strictly increasing timestamps.
type Series []Candle

func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Volume
	}
	return out
}

func (s Series) Timestamps() []time.Time {
	out := make([]time.Time, len(s))
	for i, c := range s {
		out[i] = c.Timestamp
	}
	return out
}

// Last returns the most recent candle. Callers must check len(s) > 0 first.
func (s Series) Last() Candle {
	return s[len(s)-1]
}
