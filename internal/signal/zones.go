package signal

import (
	"math"

	"ict-signal-engine/internal/domain"
)

const (
	zoneWindow        = 20
	poolLookahead     = 10
	poolTolerance     = 0.005
	poolMinTouches    = 2
	pdLevelStrength   = 3
	equilibriumWeight = 2
)

// ZoneSet holds the premium/equilibrium/discount levels of the trailing range and the
// classification of the last close against them.
type ZoneSet struct {
	Valid       bool
	RangeHigh   float64
	RangeLow    float64
	Premium     float64
	Equilibrium float64
	Discount    float64
	Current     domain.ZoneKind
}

func (z ZoneSet) Zones() []domain.Zone {
	if !z.Valid {
		return nil
	}
	return []domain.Zone{
		{Kind: domain.ZonePremium, Price: z.Premium, Strength: pdLevelStrength},
		{Kind: domain.ZoneEquilibrium, Price: z.Equilibrium, Strength: equilibriumWeight},
		{Kind: domain.ZoneDiscount, Price: z.Discount, Strength: pdLevelStrength},
	}
}

func ComputeZones(bars []domain.Bar) ZoneSet {
	if len(bars) < zoneWindow {
		return ZoneSet{Current: domain.ZoneEquilibrium}
	}

	window := bars[len(bars)-zoneWindow:]
	high := window[0].High
	low := window[0].Low
	for _, b := range window[1:] {
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
	}
	span := high - low

	z := ZoneSet{
		Valid:       true,
		RangeHigh:   high,
		RangeLow:    low,
		Discount:    low + 0.25*span,
		Equilibrium: low + 0.5*span,
		Premium:     low + 0.75*span,
	}

	last := bars[len(bars)-1].Close
	switch {
	case last >= z.Premium:
		z.Current = domain.ZonePremium
	case last <= z.Discount:
		z.Current = domain.ZoneDiscount
	default:
		z.Current = domain.ZoneEquilibrium
	}
	return z
}

// LiquidityPools clusters equal highs and equal lows. Nearby pools are not merged.
func LiquidityPools(bars []domain.Bar) []domain.Zone {
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
	}

	pools := clusterLevels(highs, domain.PoolSideHigh)
	return append(pools, clusterLevels(lows, domain.PoolSideLow)...)
}

func clusterLevels(levels []float64, side domain.PoolSide) []domain.Zone {
	var pools []domain.Zone
	for i := 1; i < len(levels)-1; i++ {
		ref := levels[i]
		if ref == 0 {
			continue
		}
		end := i + poolLookahead
		if end > len(levels)-1 {
			end = len(levels) - 1
		}

		count := 0
		for j := i + 1; j <= end; j++ {
			if math.Abs(levels[j]-ref)/ref <= poolTolerance {
				count++
			}
		}
		if count >= poolMinTouches {
			pools = append(pools, domain.Zone{
				Kind:     domain.ZoneLiquidityPool,
				Price:    ref,
				Strength: count,
				Side:     side,
			})
		}
	}
	return pools
}
