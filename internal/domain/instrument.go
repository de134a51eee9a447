package domain

import "strings"

// Instrument maps an internal asset identifier to the quote provider's symbol.
type Instrument struct {
	Asset          string `json:"asset" yaml:"asset"`
	Name           string `json:"name" yaml:"name"`
	ProviderSymbol string `json:"provider_symbol" yaml:"provider_symbol"`
}

var DefaultInstruments = []Instrument{
	{Asset: "EURUSD", Name: "Euro / US Dollar", ProviderSymbol: "EUR/USD"},
	{Asset: "GBPUSD", Name: "British Pound / US Dollar", ProviderSymbol: "GBP/USD"},
	{Asset: "USDJPY", Name: "US Dollar / Japanese Yen", ProviderSymbol: "USD/JPY"},
	{Asset: "XAUUSD", Name: "Gold Spot / US Dollar", ProviderSymbol: "XAU/USD"},
}

// Catalog is an ordered, immutable lookup of supported instruments.
type Catalog struct {
	instruments []Instrument
	byAsset     map[string]Instrument
}

func NewCatalog(instruments []Instrument) *Catalog {
	c := &Catalog{byAsset: make(map[string]Instrument, len(instruments))}
	for _, in := range instruments {
		in.Asset = NormalizeAsset(in.Asset)
		if in.Asset == "" {
			continue
		}
		if _, dup := c.byAsset[in.Asset]; dup {
			continue
		}
		if in.ProviderSymbol == "" {
			in.ProviderSymbol = in.Asset
		}
		c.byAsset[in.Asset] = in
		c.instruments = append(c.instruments, in)
	}
	return c
}

func (c *Catalog) Lookup(asset string) (Instrument, bool) {
	if c == nil {
		return Instrument{}, false
	}
	in, ok := c.byAsset[NormalizeAsset(asset)]
	return in, ok
}

func (c *Catalog) Instruments() []Instrument {
	if c == nil {
		return nil
	}
	out := make([]Instrument, len(c.instruments))
	copy(out, c.instruments)
	return out
}

func (c *Catalog) Assets() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.instruments))
	for _, in := range c.instruments {
		out = append(out, in.Asset)
	}
	return out
}

func NormalizeAsset(asset string) string {
	asset = strings.ToUpper(strings.TrimSpace(asset))
	return strings.ReplaceAll(asset, "/", "")
}
