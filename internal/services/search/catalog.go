package search

import "github.com/bobmcallan/moverwatch/internal/models"

// catalog is the hand-curated search universe, in display order
var catalog = []models.CatalogEntry{
	{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Sector: "Communication Services", Exchange: "NASDAQ"},
	{Symbol: "AMZN", Name: "Amazon.com, Inc.", Sector: "Consumer Cyclical", Exchange: "NASDAQ"},
	{Symbol: "META", Name: "Meta Platforms, Inc.", Sector: "Communication Services", Exchange: "NASDAQ"},
	{Symbol: "TSLA", Name: "Tesla, Inc.", Sector: "Consumer Cyclical", Exchange: "NASDAQ"},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "NFLX", Name: "Netflix, Inc.", Sector: "Communication Services", Exchange: "NASDAQ"},
	{Symbol: "AMD", Name: "Advanced Micro Devices, Inc.", Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "INTC", Name: "Intel Corporation", Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "ORCL", Name: "Oracle Corporation", Sector: "Technology", Exchange: "NYSE"},
	{Symbol: "CRM", Name: "Salesforce, Inc.", Sector: "Technology", Exchange: "NYSE"},
	{Symbol: "ADBE", Name: "Adobe Inc.", Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "IBM", Name: "International Business Machines", Sector: "Technology", Exchange: "NYSE"},
	{Symbol: "CSCO", Name: "Cisco Systems, Inc.", Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "AVGO", Name: "Broadcom Inc.", Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "APPN", Name: "Appian Corporation", Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "APPF", Name: "AppFolio, Inc.", Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "PYPL", Name: "PayPal Holdings, Inc.", Sector: "Financial Services", Exchange: "NASDAQ"},
	{Symbol: "SHOP", Name: "Shopify Inc.", Sector: "Technology", Exchange: "NYSE"},
	{Symbol: "UBER", Name: "Uber Technologies, Inc.", Sector: "Technology", Exchange: "NYSE"},
	{Symbol: "PLTR", Name: "Palantir Technologies Inc.", Sector: "Technology", Exchange: "NYSE"},
	{Symbol: "COIN", Name: "Coinbase Global, Inc.", Sector: "Financial Services", Exchange: "NASDAQ"},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Sector: "Financial Services", Exchange: "NYSE"},
	{Symbol: "BAC", Name: "Bank of America Corporation", Sector: "Financial Services", Exchange: "NYSE"},
	{Symbol: "GS", Name: "The Goldman Sachs Group, Inc.", Sector: "Financial Services", Exchange: "NYSE"},
	{Symbol: "V", Name: "Visa Inc.", Sector: "Financial Services", Exchange: "NYSE"},
	{Symbol: "MA", Name: "Mastercard Incorporated", Sector: "Financial Services", Exchange: "NYSE"},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: "Healthcare", Exchange: "NYSE"},
	{Symbol: "PFE", Name: "Pfizer Inc.", Sector: "Healthcare", Exchange: "NYSE"},
	{Symbol: "UNH", Name: "UnitedHealth Group Incorporated", Sector: "Healthcare", Exchange: "NYSE"},
	{Symbol: "WMT", Name: "Walmart Inc.", Sector: "Consumer Defensive", Exchange: "NYSE"},
	{Symbol: "KO", Name: "The Coca-Cola Company", Sector: "Consumer Defensive", Exchange: "NYSE"},
	{Symbol: "PEP", Name: "PepsiCo, Inc.", Sector: "Consumer Defensive", Exchange: "NASDAQ"},
	{Symbol: "DIS", Name: "The Walt Disney Company", Sector: "Communication Services", Exchange: "NYSE"},
	{Symbol: "NKE", Name: "NIKE, Inc.", Sector: "Consumer Cyclical", Exchange: "NYSE"},
	{Symbol: "XOM", Name: "Exxon Mobil Corporation", Sector: "Energy", Exchange: "NYSE"},
	{Symbol: "CVX", Name: "Chevron Corporation", Sector: "Energy", Exchange: "NYSE"},
	{Symbol: "BA", Name: "The Boeing Company", Sector: "Industrials", Exchange: "NYSE"},
	{Symbol: "SPY", Name: "SPDR S&P 500 ETF Trust", Sector: "ETF", Exchange: "NYSE Arca"},
	{Symbol: "QQQ", Name: "Invesco QQQ Trust", Sector: "ETF", Exchange: "NASDAQ"},
}

// popularSymbols is returned for an empty query
var popularSymbols = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "NVDA", "META", "NFLX"}
