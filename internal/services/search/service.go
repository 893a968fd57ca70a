// Package search matches free-text queries against a static stock catalog
package search

import (
	"context"
	"sort"
	"strings"

	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/interfaces"
	"github.com/bobmcallan/moverwatch/internal/models"
)

const (
	MaxResults     = 20
	MaxSuggestions = 8
)

// Compile-time interface check
var _ interfaces.SearchService = (*Service)(nil)

// Service implements SearchService
type Service struct {
	cache   interfaces.Cache
	logger  *common.Logger
	entries []models.CatalogEntry
	bySym   map[string]models.CatalogEntry
}

// NewService creates a search service over the built-in catalog.
// cache may be nil, in which case results are not cached.
func NewService(cache interfaces.Cache, logger *common.Logger) *Service {
	bySym := make(map[string]models.CatalogEntry, len(catalog))
	for _, e := range catalog {
		bySym[e.Symbol] = e
	}
	return &Service{
		cache:   cache,
		logger:  logger,
		entries: catalog,
		bySym:   bySym,
	}
}

func normalize(q string) string {
	return strings.ToUpper(strings.TrimSpace(q))
}

func cacheKey(q string) string {
	return "search_" + q
}

// Search ranks catalog entries against query: exact symbol, then symbol
// substring, then name substring. An empty query returns the popular list.
func (s *Service) Search(ctx context.Context, query string) []models.SearchResult {
	q := normalize(query)
	if q == "" {
		return s.popular()
	}

	if s.cache != nil {
		var cached []models.SearchResult
		if _, ok := s.cache.Get(ctx, cacheKey(q), &cached); ok {
			return cached
		}
	}

	results := s.rank(q)

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey(q), results, common.FreshnessSearch)
	}
	s.logger.Debug().Str("query", q).Int("results", len(results)).Msg("Search")
	return results
}

// Suggest returns up to MaxSuggestions results for a partial query
func (s *Service) Suggest(ctx context.Context, partial string) []models.SearchResult {
	if normalize(partial) == "" {
		return s.popular()
	}
	results := s.Search(ctx, partial)
	if len(results) > MaxSuggestions {
		results = results[:MaxSuggestions]
	}
	return results
}

// Lookup returns the catalog entry for an exact symbol (case-insensitive)
func (s *Service) Lookup(symbol string) (models.CatalogEntry, bool) {
	e, ok := s.bySym[normalize(symbol)]
	return e, ok
}

func (s *Service) rank(q string) []models.SearchResult {
	results := make([]models.SearchResult, 0, MaxResults)
	matched := make(map[string]bool)

	add := func(e models.CatalogEntry, mt models.MatchType) {
		matched[e.Symbol] = true
		results = append(results, models.SearchResult{CatalogEntry: e, MatchType: mt})
	}

	if e, ok := s.bySym[q]; ok {
		add(e, models.MatchExactSymbol)
	}
	for _, e := range s.entries {
		if !matched[e.Symbol] && strings.Contains(e.Symbol, q) {
			add(e, models.MatchPartialSymbol)
		}
	}
	for _, e := range s.entries {
		if !matched[e.Symbol] && strings.Contains(strings.ToUpper(e.Name), q) {
			add(e, models.MatchName)
		}
	}

	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchType < results[j].MatchType
	})
	return results
}

func (s *Service) popular() []models.SearchResult {
	out := make([]models.SearchResult, 0, len(popularSymbols))
	for _, sym := range popularSymbols {
		if e, ok := s.bySym[sym]; ok {
			out = append(out, models.SearchResult{CatalogEntry: e, MatchType: models.MatchExactSymbol})
		}
	}
	return out
}
