package domain

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Stock is one entry of the static reference catalog. Lot tickers reference
// it by symbol; the reference is not independently validated at write time.
type Stock struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"company_name"`
	Price       decimal.Decimal `json:"price"`
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Active      bool            `json:"active"`
}

var catalog = []Stock{
	stock("AAPL", "Apple Inc.", "173.97", "AAPL123"),
	stock("TSLA", "Tesla, Inc.", "205.66", "TSLA123"),
	stock("AMZN", "Amazon.com, Inc.", "137.00", "AMZN123"),
	stock("MSFT", "Microsoft Corporation", "346.07", "MSFT123"),
	stock("JPM", "J.P. Morgan Chase & Co.", "138.94", "JPM123"),
	stock("BAC", "Bank of America Corporation", "26.40", "BAC123"),
	stock("GOOG", "Alphabet Inc.", "2791.50", "GOOG123"),
	stock("FB", "Meta Platforms, Inc.", "330.25", "FB123"),
	stock("NFLX", "Netflix, Inc.", "651.40", "NFLX123"),
	stock("GE", "General Electric Co.", "102.40", "GE123"),
	stock("GLSR", "Glossier, Inc.", "45.75", "GLSR123"),
	stock("NKE", "Nike, Inc.", "159.32", "NKE123"),
	stock("COST", "Costco Wholesale Corporation", "550.33", "COST123"),
	stock("V", "Visa Inc.", "250.11", "V123"),
	stock("IBM", "International Business Machines Corporation", "120.15", "IBM123"),
	stock("T", "AT&T Inc.", "26.78", "T123"),
	stock("KKD", "Krispy Kreme Doughnuts, Inc.", "20.45", "KKD123"),
	stock("TGT", "Target Corporation", "240.50", "TGT123"),
	stock("IN-N-OUT", "In-N-Out Burger", "15.99", "INO123"),
	stock("UPS", "United Parcel Service, Inc.", "207.64", "UPS123"),
}

func stock(symbol, name, price, id string) Stock {
	return Stock{
		Symbol:      symbol,
		CompanyName: name,
		Price:       decimal.RequireFromString(price),
		ID:          id,
		Code:        id,
		Active:      true,
	}
}

// Catalog returns the static stock catalog.
func Catalog() []Stock {
	return catalog
}

// StockBySymbol looks up a catalog entry by ticker symbol.
func StockBySymbol(symbol string) (Stock, bool) {
	return lo.Find(catalog, func(s Stock) bool { return s.Symbol == symbol })
}
