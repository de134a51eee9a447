package mcp

import (
	"fmt"
	"strings"

	"ict-signal-engine/internal/domain"
)

const (
	defaultBarLimit    = 100
	maxBarLimit        = 500
	defaultSignalLimit = 50
	maxSignalLimit     = 200
)

type instrumentsOutput struct {
	Instruments []domain.Instrument `json:"instruments"`
}

type barsListInput struct {
	Asset string `json:"asset" jsonschema:"instrument (e.g. EURUSD, XAUUSD)"`
	Limit int    `json:"limit,omitempty" jsonschema:"number of most recent bars to return, max 500"`
}

type barsListOutput struct {
	Asset string       `json:"asset"`
	Bars  []domain.Bar `json:"bars"`
}

type signalsListInput struct {
	Asset    string `json:"asset,omitempty" jsonschema:"optional instrument (e.g. EURUSD)"`
	Strategy string `json:"strategy,omitempty" jsonschema:"optional strategy: engulfing, turtle_soup, crt_breakout, zone_rejection, ipda_entry"`
	Bias     string `json:"bias,omitempty" jsonschema:"optional direction: bullish or bearish"`
	Limit    int    `json:"limit,omitempty" jsonschema:"number of signals to return, max 200"`
}

type signalsListOutput struct {
	Signals []domain.Signal `json:"signals"`
}

type signalsGenerateInput struct {
	Asset string `json:"asset" jsonschema:"instrument (e.g. EURUSD)"`
}

type signalsGenerateOutput struct {
	GeneratedCount int             `json:"generated_count"`
	Signals        []domain.Signal `json:"signals"`
}

type analysisGetInput struct {
	Asset string `json:"asset" jsonschema:"instrument (e.g. EURUSD)"`
}

type analysisGetOutput struct {
	Analysis *domain.Analysis `json:"analysis"`
}

func normalizeAsset(asset string) (string, error) {
	asset = domain.NormalizeAsset(asset)
	if asset == "" {
		return "", fmt.Errorf("asset is required")
	}
	return asset, nil
}

func normalizeBarLimit(limit int) int {
	if limit <= 0 {
		return defaultBarLimit
	}
	if limit > maxBarLimit {
		return maxBarLimit
	}
	return limit
}

func normalizeSignalLimit(limit int) int {
	if limit <= 0 {
		return defaultSignalLimit
	}
	if limit > maxSignalLimit {
		return maxSignalLimit
	}
	return limit
}

func normalizeStrategy(strategy string) (string, error) {
	strategy = strings.ToLower(strings.TrimSpace(strategy))
	if strategy == "" {
		return "", nil
	}
	if !domain.IsKnownStrategy(strategy) {
		return "", fmt.Errorf("unsupported strategy %q, want one of %s", strategy, strings.Join(domain.Strategies, ", "))
	}
	return strategy, nil
}

func normalizeBias(bias string) (domain.Bias, error) {
	b := domain.Bias(strings.ToLower(strings.TrimSpace(bias)))
	switch b {
	case "":
		return "", nil
	case domain.BiasBullish, domain.BiasBearish:
		return b, nil
	default:
		return "", fmt.Errorf("bias must be bullish or bearish")
	}
}

func normalizeSignalFilter(in signalsListInput) (domain.SignalFilter, error) {
	filter := domain.SignalFilter{Limit: normalizeSignalLimit(in.Limit)}

	if strings.TrimSpace(in.Asset) != "" {
		asset, err := normalizeAsset(in.Asset)
		if err != nil {
			return domain.SignalFilter{}, err
		}
		filter.Asset = asset
	}

	strategy, err := normalizeStrategy(in.Strategy)
	if err != nil {
		return domain.SignalFilter{}, err
	}
	filter.Strategy = strategy

	bias, err := normalizeBias(in.Bias)
	if err != nil {
		return domain.SignalFilter{}, err
	}
	filter.Bias = bias

	return filter, nil
}
