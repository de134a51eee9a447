package signal

import (
	"math"
	"time"

	"ict-signal-engine/internal/domain"
)

const biasMinBars = 60

// QuarterlyBias compares the last close against the Q2 high and Q3 low of now's calendar
// year. The quarter windows come from now, not from the bars themselves.
func QuarterlyBias(bars []domain.Bar, now time.Time) domain.Bias {
	if len(bars) < biasMinBars {
		return domain.BiasNeutral
	}

	year := now.UTC().Year()
	q2Start := time.Date(year, time.April, 1, 0, 0, 0, 0, time.UTC)
	q3Start := time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC)
	q4Start := time.Date(year, time.October, 1, 0, 0, 0, 0, time.UTC)

	q2High, haveQ2 := math.Inf(-1), false
	q3Low, haveQ3 := math.Inf(1), false
	for _, b := range bars {
		ts := b.Timestamp.UTC()
		switch {
		case !ts.Before(q2Start) && ts.Before(q3Start):
			q2High = math.Max(q2High, b.High)
			haveQ2 = true
		case !ts.Before(q3Start) && ts.Before(q4Start):
			q3Low = math.Min(q3Low, b.Low)
			haveQ3 = true
		}
	}
	if !haveQ2 {
		return domain.BiasNeutral
	}
	if !haveQ3 {
		q3Low = q2High
	}

	last := bars[len(bars)-1].Close
	switch {
	case last > q2High:
		return domain.BiasBullish
	case last < q3Low:
		return domain.BiasBearish
	default:
		return domain.BiasNeutral
	}
}

// IPDAPhase labels the seasonal phase and which side it makes eligible.
func IPDAPhase(zone domain.ZoneKind, now time.Time) (domain.IPDAPhase, domain.Bias) {
	switch quarterOf(now) {
	case 2:
		if zone == domain.ZoneDiscount {
			return domain.PhaseMarkup, domain.BiasBullish
		}
	case 3:
		if zone == domain.ZonePremium {
			return domain.PhaseDistribution, domain.BiasBearish
		}
	}
	return domain.PhaseNeutral, domain.BiasNeutral
}

func quarterOf(t time.Time) int {
	return (int(t.UTC().Month())-1)/3 + 1
}
