package models

// MatchType ranks how a search result matched the query. Lower sorts first.
type MatchType int

const (
	MatchExactSymbol   MatchType = 0
	MatchPartialSymbol MatchType = 1
	MatchName          MatchType = 2
)

// String returns the wire name of the match type
func (m MatchType) String() string {
	switch m {
	case MatchExactSymbol:
		return "exact_symbol"
	case MatchPartialSymbol:
		return "partial_symbol"
	case MatchName:
		return "name"
	default:
		return "unknown"
	}
}

// MarshalText encodes the match type by name
func (m MatchType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a match type name
func (m *MatchType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "exact_symbol":
		*m = MatchExactSymbol
	case "partial_symbol":
		*m = MatchPartialSymbol
	default:
		*m = MatchName
	}
	return nil
}

// CatalogEntry is one row of the static search catalog
type CatalogEntry struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Sector   string `json:"sector"`
	Exchange string `json:"exchange"`
}

// SearchResult is a catalog entry with its match type
type SearchResult struct {
	CatalogEntry
	MatchType MatchType `json:"match_type"`
}
