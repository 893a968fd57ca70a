package stockdata

// companyNames maps well-known tickers to display names. The movers feed
// carries tickers only.
var companyNames = map[string]string{
	"AAPL":  "Apple Inc.",
	"MSFT":  "Microsoft Corporation",
	"GOOGL": "Alphabet Inc.",
	"GOOG":  "Alphabet Inc.",
	"AMZN":  "Amazon.com, Inc.",
	"META":  "Meta Platforms, Inc.",
	"TSLA":  "Tesla, Inc.",
	"NVDA":  "NVIDIA Corporation",
	"NFLX":  "Netflix, Inc.",
	"AMD":   "Advanced Micro Devices, Inc.",
	"INTC":  "Intel Corporation",
	"ORCL":  "Oracle Corporation",
	"CRM":   "Salesforce, Inc.",
	"ADBE":  "Adobe Inc.",
	"IBM":   "International Business Machines",
	"CSCO":  "Cisco Systems, Inc.",
	"QCOM":  "QUALCOMM Incorporated",
	"AVGO":  "Broadcom Inc.",
	"PYPL":  "PayPal Holdings, Inc.",
	"UBER":  "Uber Technologies, Inc.",
	"SHOP":  "Shopify Inc.",
	"SQ":    "Block, Inc.",
	"PLTR":  "Palantir Technologies Inc.",
	"COIN":  "Coinbase Global, Inc.",
	"JPM":   "JPMorgan Chase & Co.",
	"BAC":   "Bank of America Corporation",
	"WFC":   "Wells Fargo & Company",
	"GS":    "The Goldman Sachs Group, Inc.",
	"V":     "Visa Inc.",
	"MA":    "Mastercard Incorporated",
	"JNJ":   "Johnson & Johnson",
	"PFE":   "Pfizer Inc.",
	"UNH":   "UnitedHealth Group Incorporated",
	"WMT":   "Walmart Inc.",
	"KO":    "The Coca-Cola Company",
	"PEP":   "PepsiCo, Inc.",
	"DIS":   "The Walt Disney Company",
	"NKE":   "NIKE, Inc.",
	"XOM":   "Exxon Mobil Corporation",
	"CVX":   "Chevron Corporation",
	"BA":    "The Boeing Company",
	"SPY":   "SPDR S&P 500 ETF Trust",
	"QQQ":   "Invesco QQQ Trust",
}

// ResolveName returns the display name for ticker, or "<ticker> Corp." when unknown
func ResolveName(ticker string) string {
	if name, ok := companyNames[ticker]; ok {
		return name
	}
	return ticker + " Corp."
}
