package recommend

import (
	"math"
	"strings"

	"github.com/prismtrade/prismtrade/internal/marketstate"
)

// Marker phrases that classify a reason as directional. Anything matching
// neither set counts as neutral.
var (
	bullishMarkers = []string{"strong buy signal", "moderate buy signal", "good buying opportunity", "bullish trend"}
	bearishMarkers = []string{"strong sell signal", "moderate sell signal", "selling opportunity", "bearish trend"}
)

// Confidence scores how much to trust a recommendation, as an integer in
// [0, 100]. The market state parameter is accepted for API symmetry with the
// scorer but does not influence the result.
func Confidence(reasons []string, _ *marketstate.State, priceChange, volatility float64) int {
	total := len(reasons)
	bullish, bearish := 0, 0
	for _, reason := range reasons {
		if matchesAny(reason, bullishMarkers) {
			bullish++
		}
		if matchesAny(reason, bearishMarkers) {
			bearish++
		}
	}
	neutral := total - bullish - bearish

	base := (float64(bullish) + 0.5*float64(neutral)) / float64(max(1, total)) * 100

	volatilityFactor := 1.0
	switch {
	case volatility > 2.0:
		volatilityFactor = 0.7
	case volatility > 1.5:
		volatilityFactor = 0.8
	case volatility < 0.5:
		volatilityFactor = 1.2
	}

	priceChangeFactor := 1.0
	if math.Abs(priceChange) > 2 {
		priceChangeFactor = 0.9
	}

	contradictoryFactor := 1.0
	if bullish >= 2 && bearish >= 2 {
		contradictoryFactor = 0.85
	}

	confidence := int(base * volatilityFactor * priceChangeFactor * contradictoryFactor)
	return min(100, max(0, confidence))
}

func matchesAny(reason string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(reason, m) {
			return true
		}
	}
	return false
}
