package signal

import (
	"math"

	"ict-signal-engine/internal/domain"
)

const (
	recentATRPeriod = 14
	priorATRPeriod  = 20
	signalATRPeriod = 20
)

func TrueRange(bar, prev domain.Bar) float64 {
	return math.Max(
		bar.High-bar.Low,
		math.Max(math.Abs(bar.High-prev.Close), math.Abs(bar.Low-prev.Close)),
	)
}

// ATR averages the last period true ranges. It returns 0 when fewer than period+1 bars exist.
func ATR(bars []domain.Bar, period int) float64 {
	if period <= 0 || len(bars) < period+1 {
		return 0
	}
	var sum float64
	for i := len(bars) - period; i < len(bars); i++ {
		sum += TrueRange(bars[i], bars[i-1])
	}
	return sum / float64(period)
}

// IsHighVolatility compares the 14-bar ATR at the tail with the 20-bar ATR of the bars
// that precede that window.
func IsHighVolatility(bars []domain.Bar) bool {
	if len(bars) < recentATRPeriod+priorATRPeriod+1 {
		return false
	}
	recent := ATR(bars, recentATRPeriod)
	prior := ATR(bars[:len(bars)-recentATRPeriod], priorATRPeriod)
	return recent > prior
}
