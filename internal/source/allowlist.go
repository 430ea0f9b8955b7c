package source

// commonStocks are widely traded symbols accepted without a remote
// lookup. They also get eager synthetic fallback so a total API outage
// still renders instantly.
var commonStocks = map[string]struct{}{
	"AAPL": {}, "MSFT": {}, "GOOG": {}, "GOOGL": {}, "AMZN": {}, "META": {}, "TSLA": {},
	"NVDA": {}, "AMD": {}, "INTC": {},
	"JPM": {}, "BAC": {}, "WFC": {}, "GS": {}, "V": {}, "MA": {}, "PYPL": {}, "PFE": {},
	"JNJ": {}, "UNH": {},
	"PG": {}, "KO": {}, "PEP": {}, "MCD": {}, "SBUX": {}, "DIS": {}, "NFLX": {}, "CMCSA": {},
	"T": {}, "VZ": {},
	"HD": {}, "LOW": {}, "TGT": {}, "WMT": {}, "COST": {}, "XOM": {}, "CVX": {}, "BP": {},
	"SHEL": {}, "COP": {},
	"SPY": {}, "QQQ": {}, "DIA": {}, "IWM": {}, "VTI": {},
}

// IsCommon reports whether the symbol is in the well-known allowlist.
func IsCommon(symbol string) bool {
	_, ok := commonStocks[symbol]
	return ok
}
