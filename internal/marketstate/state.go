package marketstate

// State is the qualitative market classification produced by one analysis
// call. It is created fresh per call; later pipeline stages read it but
// never mutate it.
type State struct {
	Bullish bool `json:"bullish"`
	Bearish bool `json:"bearish"`

	// TrendStrength is a 0-100 heuristic magnitude of directional conviction.
	TrendStrength int `json:"trend_strength"`

	// Correction and CorrectionDepth feed the scoring and level-planning
	// rules when set.
	Correction      bool    `json:"correction"`
	CorrectionDepth float64 `json:"correction_depth"`

	PullbackOpportunity bool `json:"pullback_opportunity"`
	Oversold            bool `json:"oversold"`
	Overbought          bool `json:"overbought"`

	SmartMoneyBuying  bool `json:"smart_money_buying"`
	SmartMoneySelling bool `json:"smart_money_selling"`

	FalseBreakout         bool `json:"false_breakout"`
	FalseBreakdown        bool `json:"false_breakdown"`
	PotentialReversal     bool `json:"potential_reversal"`
	Whipsaw               bool `json:"whipsaw"`
	VolatileConsolidation bool `json:"volatile_consolidation"`

	ReversalRisk           float64 `json:"rapid_reversal_risk"`
	FalseSignalProbability float64 `json:"false_signal_probability"`

	// Explanation records every rule that fired, in rule evaluation order.
	Explanation []string `json:"explanation"`
}

func (s *State) explain(msg string) {
	s.Explanation = append(s.Explanation, msg)
}

// Summary is the compact market-state view exposed on analysis results.
type Summary struct {
	Bullish         bool     `json:"bullish"`
	Bearish         bool     `json:"bearish"`
	Correction      bool     `json:"correction"`
	TrendStrength   int      `json:"trend_strength"`
	CorrectionDepth float64  `json:"correction_depth"`
	Explanation     []string `json:"explanation"`
}

// Summarize extracts the summary fields from a full state.
func (s *State) Summarize() Summary {
	return Summary{
		Bullish:         s.Bullish,
		Bearish:         s.Bearish,
		Correction:      s.Correction,
		TrendStrength:   s.TrendStrength,
		CorrectionDepth: s.CorrectionDepth,
		Explanation:     s.Explanation,
	}
}
