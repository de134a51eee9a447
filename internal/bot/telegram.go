package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ict-signal-engine/internal/domain"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

const commandTimeout = 10 * time.Second

type SignalQuerier interface {
	Assets() []string
	ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error)
	Analyze(ctx context.Context, asset string) (*domain.Analysis, error)
}

// StartTelegramBot starts long polling in the background and returns the alert dispatcher
// bound to it. It returns nil when no token is configured.
func StartTelegramBot(token string, signalService SignalQuerier) *AlertDispatcher {
	if token == "" {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Telegram bot")
	}
	alerts := NewAlertDispatcher(b)

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/signals", func(c tele.Context) error {
		if signalService == nil {
			return c.Send("Signal service unavailable")
		}

		filter, err := parseSignalArgs(c.Args())
		if err != nil {
			return c.Send("Usage: /signals EURUSD | /signals --strategy turtle_soup | /signals XAUUSD --bias bearish")
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		signals, err := signalService.ListSignals(ctx, filter)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching signals: %v", err))
		}
		if len(signals) == 0 {
			return c.Send("No matching signals right now.")
		}

		lines := make([]string, 0, len(signals)+1)
		lines = append(lines, "Latest signals:")
		for _, s := range signals {
			lines = append(lines, formatSignal(s))
		}
		return c.Send(strings.Join(lines, "\n"))
	})

	b.Handle("/analysis", func(c tele.Context) error {
		if signalService == nil {
			return c.Send("Signal service unavailable")
		}
		args := c.Args()
		supported := strings.Join(signalService.Assets(), ", ")
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /analysis EURUSD\nSupported: %s", supported))
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		analysis, err := signalService.Analyze(ctx, args[0])
		if err != nil {
			return c.Send(fmt.Sprintf("Error analysing %s: %v\nSupported: %s", strings.ToUpper(args[0]), err, supported))
		}
		return c.Send(formatAnalysis(*analysis))
	})

	b.Handle("/alerts", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}

		mode, err := parseAlertMode(c.Args())
		if err != nil {
			return c.Send("Usage: /alerts on | /alerts off | /alerts status")
		}

		switch mode {
		case "on":
			if alerts.Subscribe(chat.ID) {
				return c.Send("Signal alerts enabled for this chat.")
			}
			return c.Send("Signal alerts are already enabled for this chat.")
		case "off":
			if alerts.Unsubscribe(chat.ID) {
				return c.Send("Signal alerts disabled for this chat.")
			}
			return c.Send("Signal alerts are already disabled for this chat.")
		default:
			if alerts.IsSubscribed(chat.ID) {
				return c.Send("Alerts status: ON")
			}
			return c.Send("Alerts status: OFF")
		}
	})

	log.Info().Msg("Telegram bot started")
	go b.Start()
	return alerts
}

func parseSignalArgs(args []string) (domain.SignalFilter, error) {
	filter := domain.SignalFilter{Limit: 5}

	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])
		if arg == "" {
			continue
		}

		if name, value, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(name, "--") {
			if err := applySignalOption(&filter, name, value); err != nil {
				return domain.SignalFilter{}, err
			}
			continue
		}
		if strings.HasPrefix(arg, "--") {
			if i+1 >= len(args) {
				return domain.SignalFilter{}, fmt.Errorf("missing value for %s", arg)
			}
			i++
			if err := applySignalOption(&filter, arg, args[i]); err != nil {
				return domain.SignalFilter{}, err
			}
			continue
		}

		if filter.Asset != "" {
			return domain.SignalFilter{}, errors.New("multiple assets provided")
		}
		filter.Asset = domain.NormalizeAsset(arg)
	}

	return filter, nil
}

func applySignalOption(filter *domain.SignalFilter, name, value string) error {
	value = strings.ToLower(strings.TrimSpace(value))
	switch name {
	case "--strategy":
		if !domain.IsKnownStrategy(value) {
			return fmt.Errorf("unknown strategy %q", value)
		}
		filter.Strategy = value
	case "--bias":
		bias := domain.Bias(value)
		if bias != domain.BiasBullish && bias != domain.BiasBearish {
			return errors.New("bias must be bullish or bearish")
		}
		filter.Bias = bias
	case "--limit":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 || n > 20 {
			return errors.New("limit must be between 1 and 20")
		}
		filter.Limit = n
	default:
		return fmt.Errorf("unknown option %s", name)
	}
	return nil
}

func formatSignal(s domain.Signal) string {
	return fmt.Sprintf(
		"#%d %s %s %s %s entry %s stop %s target %s (%.0f%%) at %s",
		s.ID,
		s.Asset,
		s.Timeframe,
		strings.ToUpper(s.Strategy),
		strings.ToUpper(string(s.Bias)),
		formatPrice(s.EntryPrice),
		formatPrice(s.StopLoss),
		formatPrice(s.TakeProfit),
		s.Confidence*100,
		s.Timestamp.UTC().Format(time.RFC822),
	)
}

func formatAnalysis(a domain.Analysis) string {
	lines := []string{
		fmt.Sprintf("%s %s analysis (%d bars)", a.Asset, a.Timeframe, a.BarCount),
		fmt.Sprintf("Last close: %s  ATR: %s  High volatility: %t", formatPrice(a.LastClose), formatPrice(a.ATR), a.HighVolatility),
		fmt.Sprintf("Bias: %s  Phase: %s  Zone: %s", a.Bias, a.Phase, a.CurrentZone),
	}
	for _, z := range a.Zones {
		lines = append(lines, fmt.Sprintf("  %s %s", z.Kind, formatPrice(z.Price)))
	}
	if len(a.LiquidityPools) > 0 {
		lines = append(lines, fmt.Sprintf("Liquidity pools: %d", len(a.LiquidityPools)))
	}
	if len(a.Patterns) > 0 {
		lines = append(lines, "Patterns: "+strings.Join(a.Patterns, ", "))
	}
	if len(a.Signals) == 0 {
		lines = append(lines, "No signals on the last bar.")
	}
	for _, s := range a.Signals {
		lines = append(lines, formatSignal(s))
	}
	return strings.Join(lines, "\n")
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 5, 64)
}
