package signal

import (
	"math"

	"ict-signal-engine/internal/domain"
)

const (
	dojiBodyRatio    = 0.001
	turtleRefWindow  = 20
	turtleWindow     = turtleRefWindow + 2
	crtWindow        = 6
	crtMaxRangeRatio = 0.005
	zoneReactionBars = 3
	sweepWindow      = 5
	sweepVolumeBars  = 20
	sweepVolumeMult  = 2.0
)

type zoneReactionKind string

const (
	reactionRejection zoneReactionKind = "rejection"
	reactionBreakout  zoneReactionKind = "breakout"
)

type zoneReaction struct {
	kind      zoneReactionKind
	direction domain.Bias
}

type sweep struct {
	pool      domain.Zone
	direction domain.Bias
}

func isBullishEngulfing(prev, cur domain.Bar) bool {
	return prev.IsBearish() && cur.IsBullish() &&
		cur.Open < prev.Close && cur.Close > prev.Open
}

func isBearishEngulfing(prev, cur domain.Bar) bool {
	return prev.IsBullish() && cur.IsBearish() &&
		cur.Open > prev.Close && cur.Close < prev.Open
}

func detectEngulfing(bars []domain.Bar) (bullish, bearish bool) {
	if len(bars) < 2 {
		return false, false
	}
	prev, cur := bars[len(bars)-2], bars[len(bars)-1]
	return isBullishEngulfing(prev, cur), isBearishEngulfing(prev, cur)
}

// IsDoji treats a bar with no range as a doji.
func IsDoji(bar domain.Bar) bool {
	span := bar.High - bar.Low
	if span == 0 {
		return true
	}
	return math.Abs(bar.Close-bar.Open)/span <= dojiBodyRatio
}

// detectTurtleSoup looks for a false break of the 20-bar extreme by the second to last bar
// that the last bar closes back inside.
func detectTurtleSoup(bars []domain.Bar) (bullish, bearish bool) {
	if len(bars) < turtleWindow {
		return false, false
	}
	window := bars[len(bars)-turtleWindow:]
	ref := window[:turtleRefWindow]
	breakBar, confirmBar := window[turtleRefWindow], window[turtleRefWindow+1]

	refHigh, refLow := ref[0].High, ref[0].Low
	for _, b := range ref[1:] {
		refHigh = math.Max(refHigh, b.High)
		refLow = math.Min(refLow, b.Low)
	}

	bullish = breakBar.Low < refLow && confirmBar.Close > refLow
	bearish = breakBar.High > refHigh && confirmBar.Close < refHigh
	return bullish, bearish
}

// IsCRT reports a tight six-bar consolidation.
func IsCRT(bars []domain.Bar) bool {
	if len(bars) < crtWindow {
		return false
	}
	window := bars[len(bars)-crtWindow:]
	high, low := window[0].High, window[0].Low
	for _, b := range window[1:] {
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
	}
	mid := (high + low) / 2
	if mid <= 0 {
		return false
	}
	return (high-low)/mid <= crtMaxRangeRatio
}

// detectZoneReaction checks rejections before breakouts; the first match wins.
func detectZoneReaction(bars []domain.Bar, zones ZoneSet) (zoneReaction, bool) {
	if !zones.Valid || len(bars) < zoneReactionBars {
		return zoneReaction{}, false
	}
	prev, cur := bars[len(bars)-2], bars[len(bars)-1]

	switch zones.Current {
	case domain.ZonePremium:
		if prev.High >= zones.Premium && cur.Close < prev.Low {
			return zoneReaction{kind: reactionRejection, direction: domain.BiasBearish}, true
		}
	case domain.ZoneDiscount:
		if prev.Low <= zones.Discount && cur.Close > prev.High {
			return zoneReaction{kind: reactionRejection, direction: domain.BiasBullish}, true
		}
	}

	if cur.Close > zones.Premium {
		return zoneReaction{kind: reactionBreakout, direction: domain.BiasBullish}, true
	}
	if cur.Close < zones.Discount {
		return zoneReaction{kind: reactionBreakout, direction: domain.BiasBearish}, true
	}
	return zoneReaction{}, false
}

// detectLiquiditySweeps finds pools that were run and reclaimed within the last five bars
// while volume spiked above twice the trailing 20-bar average.
func detectLiquiditySweeps(bars []domain.Bar, pools []domain.Zone) []sweep {
	if len(pools) == 0 || len(bars) < sweepWindow+sweepVolumeBars {
		return nil
	}
	window := bars[len(bars)-sweepWindow:]
	trailing := bars[len(bars)-sweepWindow-sweepVolumeBars : len(bars)-sweepWindow]

	var total int64
	for _, b := range trailing {
		total += b.Volume
	}
	avg := float64(total) / float64(len(trailing))
	if avg <= 0 {
		return nil
	}
	spike := false
	for _, b := range window {
		if float64(b.Volume) > sweepVolumeMult*avg {
			spike = true
			break
		}
	}
	if !spike {
		return nil
	}

	var out []sweep
	for _, pool := range pools {
		if swept(window, pool) {
			direction := domain.BiasBullish
			if pool.Side == domain.PoolSideHigh {
				direction = domain.BiasBearish
			}
			out = append(out, sweep{pool: pool, direction: direction})
		}
	}
	return out
}

func swept(window []domain.Bar, pool domain.Zone) bool {
	broke := false
	for _, b := range window {
		if pool.Side == domain.PoolSideHigh {
			broke = broke || b.High > pool.Price
			if broke && b.Close < pool.Price {
				return true
			}
			continue
		}
		broke = broke || b.Low < pool.Price
		if broke && b.Close > pool.Price {
			return true
		}
	}
	return false
}
