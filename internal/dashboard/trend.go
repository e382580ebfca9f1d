package dashboard

import "math"

const (
	TrendNoData  = "No data"
	TrendRising  = "Rising"
	TrendFalling = "Falling"
	TrendStable  = "Stable"

	// changes within (-10%, +10%) are reported as stable
	trendThresholdPct = 10
)

type Trend struct {
	Label string `json:"label"`
	Pct   int    `json:"pct"`
}

// ClassifyTrend compares the volume of the current 7 days with the previous 7 days.
func ClassifyTrend(current, previous float64) Trend {
	if current == 0 && previous == 0 {
		return Trend{Label: TrendNoData, Pct: 0}
	}
	if previous == 0 {
		return Trend{Label: TrendRising, Pct: 100}
	}

	pct := int(math.Round((current - previous) / previous * 100))
	switch {
	case pct >= trendThresholdPct:
		return Trend{Label: TrendRising, Pct: pct}
	case pct <= -trendThresholdPct:
		return Trend{Label: TrendFalling, Pct: pct}
	default:
		return Trend{Label: TrendStable, Pct: pct}
	}
}
