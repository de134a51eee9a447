package signal

import (
	"time"

	"ict-signal-engine/internal/domain"
)

const (
	minSignalBars     = 60
	liquidityLookback = 50
	stopATRMultiple   = 1.5
	targetATRMultiple = 3.0
)

// Engine turns a bar series into trade signals. It keeps no state between calls apart
// from the clock used for the calendar-quarter rules.
type Engine struct {
	now func() time.Time
}

func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// snapshot is everything computed once per invocation and shared by the detectors.
type snapshot struct {
	bars           []domain.Bar
	now            time.Time
	price          float64
	atr            float64
	highVolatility bool
	bias           domain.Bias
	zones          ZoneSet
	phase          domain.IPDAPhase
	phaseSide      domain.Bias
	pools          []domain.Zone
}

func (e *Engine) evaluate(bars []domain.Bar) snapshot {
	c := snapshot{bars: bars, now: e.now().UTC()}
	if len(bars) == 0 {
		c.bias = domain.BiasNeutral
		c.zones = ComputeZones(bars)
		c.phase, c.phaseSide = IPDAPhase(c.zones.Current, c.now)
		return c
	}

	c.price = bars[len(bars)-1].Close
	c.atr = ATR(bars, signalATRPeriod)
	c.highVolatility = IsHighVolatility(bars)
	c.bias = QuarterlyBias(bars, c.now)
	c.zones = ComputeZones(bars)
	c.phase, c.phaseSide = IPDAPhase(c.zones.Current, c.now)

	poolBars := bars
	if len(poolBars) > liquidityLookback {
		poolBars = poolBars[len(poolBars)-liquidityLookback:]
	}
	c.pools = LiquidityPools(poolBars)
	return c
}

// Generate emits every strategy that fires on the last bar. Strategies are independent;
// several may fire for the same bar.
func (e *Engine) Generate(bars []domain.Bar) []domain.Signal {
	if len(bars) < minSignalBars {
		return nil
	}
	return e.synthesize(e.evaluate(bars))
}

func (e *Engine) synthesize(c snapshot) []domain.Signal {
	if len(c.bars) < minSignalBars || !c.highVolatility || c.atr <= 0 {
		return nil
	}

	zones := c.zones.Zones()
	for _, s := range detectLiquiditySweeps(c.bars, c.pools) {
		zones = append(zones, s.pool)
	}

	var out []domain.Signal
	emit := func(strategy string, direction domain.Bias) {
		out = append(out, newSignal(c, strategy, direction, zones))
	}

	bullEngulf, bearEngulf := detectEngulfing(c.bars)
	if bullEngulf && !c.bias.Opposes(domain.BiasBullish) {
		emit(domain.StrategyEngulfing, domain.BiasBullish)
	}
	if bearEngulf && !c.bias.Opposes(domain.BiasBearish) {
		emit(domain.StrategyEngulfing, domain.BiasBearish)
	}

	bullSoup, bearSoup := detectTurtleSoup(c.bars)
	if bullSoup {
		emit(domain.StrategyTurtleSoup, domain.BiasBullish)
	}
	if bearSoup {
		emit(domain.StrategyTurtleSoup, domain.BiasBearish)
	}

	if IsCRT(c.bars) && c.zones.Valid {
		switch {
		case c.bias == domain.BiasBullish && c.price > c.zones.Equilibrium:
			emit(domain.StrategyCRTBreakout, domain.BiasBullish)
		case c.bias == domain.BiasBearish && c.price < c.zones.Equilibrium:
			emit(domain.StrategyCRTBreakout, domain.BiasBearish)
		}
	}

	if r, ok := detectZoneReaction(c.bars, c.zones); ok && r.kind == reactionRejection {
		emit(domain.StrategyZoneRejection, r.direction)
	}

	if c.phaseSide != domain.BiasNeutral && !c.bias.Opposes(c.phaseSide) {
		emit(domain.StrategyIPDAEntry, c.phaseSide)
	}

	return out
}

func newSignal(c snapshot, strategy string, direction domain.Bias, zones []domain.Zone) domain.Signal {
	last := c.bars[len(c.bars)-1]
	timeframe := last.Timeframe
	if timeframe == "" {
		timeframe = domain.DefaultTimeframe
	}

	stop := c.price - stopATRMultiple*c.atr
	target := c.price + targetATRMultiple*c.atr
	if direction == domain.BiasBearish {
		stop = c.price + stopATRMultiple*c.atr
		target = c.price - targetATRMultiple*c.atr
	}

	return domain.Signal{
		Asset:      domain.NormalizeAsset(last.Asset),
		Timeframe:  timeframe,
		Strategy:   strategy,
		Bias:       direction,
		EntryPrice: c.price,
		StopLoss:   stop,
		TakeProfit: target,
		Confidence: domain.StrategyConfidence[strategy],
		Timestamp:  last.Timestamp.UTC(),
		Zones:      append([]domain.Zone(nil), zones...),
	}
}

// Analyze reports every intermediate result alongside the signals Generate would emit.
func (e *Engine) Analyze(bars []domain.Bar) domain.Analysis {
	c := e.evaluate(bars)

	a := domain.Analysis{
		Timeframe:      domain.DefaultTimeframe,
		BarCount:       len(bars),
		AsOf:           c.now,
		LastClose:      c.price,
		ATR:            c.atr,
		HighVolatility: c.highVolatility,
		Bias:           c.bias,
		Phase:          c.phase,
		CurrentZone:    c.zones.Current,
		Zones:          c.zones.Zones(),
		LiquidityPools: c.pools,
		Patterns:       detectedPatterns(c),
		Signals:        e.synthesize(c),
	}
	if len(bars) > 0 {
		last := bars[len(bars)-1]
		a.Asset = domain.NormalizeAsset(last.Asset)
		if last.Timeframe != "" {
			a.Timeframe = last.Timeframe
		}
	}
	return a
}

func detectedPatterns(c snapshot) []string {
	patterns := make([]string, 0, 4)
	if len(c.bars) == 0 {
		return patterns
	}

	bullEngulf, bearEngulf := detectEngulfing(c.bars)
	if bullEngulf {
		patterns = append(patterns, "engulfing_bullish")
	}
	if bearEngulf {
		patterns = append(patterns, "engulfing_bearish")
	}
	if IsDoji(c.bars[len(c.bars)-1]) {
		patterns = append(patterns, "doji")
	}
	bullSoup, bearSoup := detectTurtleSoup(c.bars)
	if bullSoup {
		patterns = append(patterns, "turtle_soup_bullish")
	}
	if bearSoup {
		patterns = append(patterns, "turtle_soup_bearish")
	}
	if IsCRT(c.bars) {
		patterns = append(patterns, "crt")
	}
	if r, ok := detectZoneReaction(c.bars, c.zones); ok {
		patterns = append(patterns, "zone_"+string(r.kind)+"_"+string(r.direction))
	}
	for _, s := range detectLiquiditySweeps(c.bars, c.pools) {
		patterns = append(patterns, "liquidity_sweep_"+string(s.direction))
	}
	return patterns
}
