package symbols

import "strings"

// quoteAssets recognized when a symbol has no separator.
var quoteAssets = []string{"FDUSD", "USDT", "BUSD", "USDC", "TUSD", "BTC", "ETH", "BNB"}

// Pair is a base/quote asset pair.
type Pair struct {
	Base  string
	Quote string
}

// ParsePair reads "BTC/USDT" or "BTCUSDT". An unknown quote yields a zero Pair.
func ParsePair(s string) Pair {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Pair{}
	}
	if parts := strings.SplitN(s, "/", 2); len(parts) == 2 {
		return Pair{Base: strings.TrimSpace(parts[0]), Quote: strings.TrimSpace(parts[1])}
	}
	for _, quote := range quoteAssets {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return Pair{Base: s[:len(s)-len(quote)], Quote: quote}
		}
	}
	return Pair{}
}

func (p Pair) IsValid() bool {
	return p.Base != "" && p.Quote != ""
}

// Exchange returns the separator-free form, e.g. BTCUSDT.
func (p Pair) Exchange() string {
	if !p.IsValid() {
		return ""
	}
	return p.Base + p.Quote
}

// Display returns BASE/QUOTE for any quote asset.
func (p Pair) Display() string {
	if !p.IsValid() {
		return ""
	}
	return p.Base + "/" + p.Quote
}
