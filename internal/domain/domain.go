package domain

import "time"

// DefaultTimeframe is the bar interval every signal is labelled with.
const DefaultTimeframe = "5min"

type Bar struct {
	Asset     string    `json:"asset"`
	Timeframe string    `json:"timeframe"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

func (b Bar) IsBullish() bool { return b.Close > b.Open }

func (b Bar) IsBearish() bool { return b.Close < b.Open }

type Bias string

const (
	BiasBullish Bias = "bullish"
	BiasBearish Bias = "bearish"
	BiasNeutral Bias = "neutral"
)

// Opposes reports whether b points the other way from direction.
func (b Bias) Opposes(direction Bias) bool {
	switch direction {
	case BiasBullish:
		return b == BiasBearish
	case BiasBearish:
		return b == BiasBullish
	}
	return false
}

func (b Bias) IsValid() bool {
	return b == BiasBullish || b == BiasBearish || b == BiasNeutral
}

type ZoneKind string

const (
	ZonePremium       ZoneKind = "premium"
	ZoneEquilibrium   ZoneKind = "equilibrium"
	ZoneDiscount      ZoneKind = "discount"
	ZoneLiquidityPool ZoneKind = "liquidity_pool"
)

type PoolSide string

const (
	PoolSideHigh PoolSide = "high"
	PoolSideLow  PoolSide = "low"
)

type Zone struct {
	Kind     ZoneKind `json:"kind"`
	Price    float64  `json:"price"`
	Strength int      `json:"strength"`
	Side     PoolSide `json:"side,omitempty"`
}

const (
	StrategyEngulfing     = "engulfing"
	StrategyTurtleSoup    = "turtle_soup"
	StrategyCRTBreakout   = "crt_breakout"
	StrategyZoneRejection = "zone_rejection"
	StrategyIPDAEntry     = "ipda_entry"
)

var Strategies = []string{
	StrategyEngulfing,
	StrategyTurtleSoup,
	StrategyCRTBreakout,
	StrategyZoneRejection,
	StrategyIPDAEntry,
}

// StrategyConfidence holds the fixed confidence attached to each strategy.
var StrategyConfidence = map[string]float64{
	StrategyEngulfing:     0.7,
	StrategyTurtleSoup:    0.8,
	StrategyCRTBreakout:   0.6,
	StrategyZoneRejection: 0.75,
	StrategyIPDAEntry:     0.85,
}

func IsKnownStrategy(strategy string) bool {
	_, ok := StrategyConfidence[strategy]
	return ok
}

type Signal struct {
	ID         int64     `json:"id,omitempty"`
	Asset      string    `json:"asset"`
	Timeframe  string    `json:"timeframe"`
	Strategy   string    `json:"strategy"`
	Bias       Bias      `json:"bias"`
	EntryPrice float64   `json:"entry_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
	Zones      []Zone    `json:"zones,omitempty"`
}

// SignalPayload is the opaque document stored next to a persisted signal.
type SignalPayload struct {
	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`
	Zones      []Zone  `json:"zones"`
}

func (s Signal) Payload() SignalPayload {
	zones := s.Zones
	if zones == nil {
		zones = []Zone{}
	}
	return SignalPayload{Strategy: s.Strategy, Confidence: s.Confidence, Zones: zones}
}

type SignalFilter struct {
	Asset    string
	Strategy string
	Bias     Bias
	Limit    int
}

type IPDAPhase string

const (
	PhaseMarkup       IPDAPhase = "markup"
	PhaseDistribution IPDAPhase = "distribution"
	PhaseNeutral      IPDAPhase = "neutral"
)

// Analysis is a diagnostic snapshot of every intermediate engine result for one asset.
type Analysis struct {
	Asset          string    `json:"asset"`
	Timeframe      string    `json:"timeframe"`
	BarCount       int       `json:"bar_count"`
	AsOf           time.Time `json:"as_of"`
	LastClose      float64   `json:"last_close"`
	ATR            float64   `json:"atr"`
	HighVolatility bool      `json:"high_volatility"`
	Bias           Bias      `json:"bias"`
	Phase          IPDAPhase `json:"phase"`
	CurrentZone    ZoneKind  `json:"current_zone"`
	Zones          []Zone    `json:"zones"`
	LiquidityPools []Zone    `json:"liquidity_pools"`
	Patterns       []string  `json:"patterns"`
	Signals        []Signal  `json:"signals"`
}
