// Package wishlist provides persisted, user-curated stock lists
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/interfaces"
	"github.com/bobmcallan/moverwatch/internal/models"
)

// CollectionKey is the store key holding the whole wishlist collection as a JSON array
const CollectionKey = "wishlists"

var (
	ErrNotFound      = errors.New("wishlist not found")
	ErrAlreadyExists = errors.New("stock already exists in wishlist")
	ErrMissingSymbol = errors.New("stock symbol is required")
	ErrEmptyName     = errors.New("wishlist name is required")
)

// Compile-time interface check
var _ interfaces.WishlistService = (*Service)(nil)

// Service implements WishlistService.
//
// The collection is persisted under CollectionKey. An in-memory mirror serves
// reads; every write invalidates it and re-syncs it only after the store
// accepted the new collection. mu serializes read-modify-write cycles.
type Service struct {
	store  interfaces.KeyValueStore
	logger *common.Logger
	now    func() time.Time
	newID  func() string

	mu     sync.Mutex
	mirror []models.Wishlist
	synced bool
}

// NewService creates a new wishlist service
func NewService(store interfaces.KeyValueStore, logger *common.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  newID,
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// List returns every wishlist. Store failures degrade to an empty list.
func (s *Service) List(ctx context.Context) []models.Wishlist {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.loadLocked(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load wishlists")
		return []models.Wishlist{}
	}
	return lists
}

// Create adds an empty wishlist with the trimmed name
func (s *Service) Create(ctx context.Context, name string) (*models.Wishlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.loadLocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlists: %w", err)
	}

	now := s.now()
	wl := models.Wishlist{
		ID:        s.newID(),
		Name:      name,
		Stocks:    []models.WishlistStock{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	lists = append(lists, wl)

	if err := s.persistLocked(ctx, lists); err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", wl.ID).Str("name", wl.Name).Msg("Wishlist created")
	return cloneWishlist(&wl), nil
}

// Delete removes the wishlist with id. An unknown id is a successful no-op.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.loadLocked(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load wishlists: %w", err)
	}

	idx := indexOf(lists, id)
	if idx < 0 {
		return true, nil
	}
	lists = append(lists[:idx], lists[idx+1:]...)

	if err := s.persistLocked(ctx, lists); err != nil {
		return false, err
	}

	s.logger.Info().Str("id", id).Msg("Wishlist deleted")
	return true, nil
}

// AddStock appends a stock to the wishlist. Symbols are unique per list (case-sensitive).
func (s *Service) AddStock(ctx context.Context, id string, stock models.StockInput) (*models.Wishlist, error) {
	symbol := normalizeSymbol(stock.ResolvedSymbol())
	if symbol == "" {
		return nil, ErrMissingSymbol
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.loadLocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlists: %w", err)
	}

	idx := indexOf(lists, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	wl := &lists[idx]
	if wl.HasSymbol(symbol) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, symbol)
	}

	now := s.now()
	wl.Stocks = append(wl.Stocks, models.WishlistStock{
		Symbol:      symbol,
		Name:        stock.Name,
		Price:       stock.Price,
		Change:      stock.Change,
		AddedAt:     now,
		LastUpdated: now,
	})
	wl.UpdatedAt = now

	if err := s.persistLocked(ctx, lists); err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", id).Str("symbol", symbol).Msg("Stock added to wishlist")
	return cloneWishlist(wl), nil
}

// RemoveStock drops symbol from the wishlist. Removing an absent symbol still bumps UpdatedAt.
func (s *Service) RemoveStock(ctx context.Context, id, symbol string) (*models.Wishlist, error) {
	symbol = normalizeSymbol(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.loadLocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlists: %w", err)
	}

	idx := indexOf(lists, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	wl := &lists[idx]

	kept := wl.Stocks[:0]
	for _, st := range wl.Stocks {
		if st.Symbol != symbol {
			kept = append(kept, st)
		}
	}
	wl.Stocks = kept
	wl.UpdatedAt = s.now()

	if err := s.persistLocked(ctx, lists); err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", id).Str("symbol", symbol).Msg("Stock removed from wishlist")
	return cloneWishlist(wl), nil
}

// FindListsContaining returns the ids of every list holding symbol
func (s *Service) FindListsContaining(ctx context.Context, symbol string) []string {
	symbol = normalizeSymbol(symbol)
	ids := []string{}
	for _, wl := range s.List(ctx) {
		if wl.HasSymbol(symbol) {
			ids = append(ids, wl.ID)
		}
	}
	return ids
}

// AllStocksFlattened returns every stock across all lists, tagged with its owning list
func (s *Service) AllStocksFlattened(ctx context.Context) []models.FlattenedStock {
	out := []models.FlattenedStock{}
	for _, wl := range s.List(ctx) {
		for _, st := range wl.Stocks {
			out = append(out, models.FlattenedStock{
				WishlistStock: st,
				WishlistID:    wl.ID,
				WishlistName:  wl.Name,
			})
		}
	}
	return out
}

// ApplyPriceUpdates overwrites price and change for every matching stock in every list.
// It persists once, and only if at least one stock matched. Returns the number of stocks updated.
func (s *Service) ApplyPriceUpdates(ctx context.Context, updates []models.PriceUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	bySymbol := make(map[string]models.PriceUpdate, len(updates))
	for _, u := range updates {
		if sym := normalizeSymbol(u.ResolvedSymbol()); sym != "" {
			bySymbol[sym] = u
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.loadLocked(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load wishlists: %w", err)
	}

	now := s.now()
	updated := 0
	for i := range lists {
		for j := range lists[i].Stocks {
			st := &lists[i].Stocks[j]
			u, ok := bySymbol[st.Symbol]
			if !ok {
				continue
			}
			st.Price = u.Price
			st.Change = u.Change
			st.LastUpdated = now
			updated++
		}
	}

	if updated == 0 {
		return 0, nil
	}
	if err := s.persistLocked(ctx, lists); err != nil {
		return 0, err
	}

	s.logger.Info().Int("updated", updated).Msg("Wishlist prices updated")
	return updated, nil
}

// ClearAll removes the whole collection
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.synced = false
	if err := s.store.Remove(ctx, CollectionKey); err != nil {
		return fmt.Errorf("failed to clear wishlists: %w", err)
	}
	s.mirror = []models.Wishlist{}
	s.synced = true

	s.logger.Info().Msg("All wishlists cleared")
	return nil
}

// loadLocked returns a private copy of the collection, from the mirror when synced
func (s *Service) loadLocked(ctx context.Context) ([]models.Wishlist, error) {
	if s.synced {
		return cloneAll(s.mirror), nil
	}

	raw, found, err := s.store.Get(ctx, CollectionKey)
	if err != nil {
		return nil, err
	}

	lists := []models.Wishlist{}
	if found && raw != "" {
		if err := json.Unmarshal([]byte(raw), &lists); err != nil {
			return nil, fmt.Errorf("failed to decode wishlists: %w", err)
		}
	}

	s.mirror = cloneAll(lists)
	s.synced = true
	return lists, nil
}

// persistLocked writes lists and re-syncs the mirror on success.
// On failure the mirror stays invalid so the next read goes to the store.
func (s *Service) persistLocked(ctx context.Context, lists []models.Wishlist) error {
	s.synced = false

	data, err := json.Marshal(lists)
	if err != nil {
		return fmt.Errorf("failed to encode wishlists: %w", err)
	}
	if err := s.store.Set(ctx, CollectionKey, string(data)); err != nil {
		return fmt.Errorf("failed to save wishlists: %w", err)
	}

	s.mirror = cloneAll(lists)
	s.synced = true
	return nil
}

// normalizeSymbol trims surrounding whitespace. Case is preserved.
func normalizeSymbol(symbol string) string {
	return strings.TrimSpace(symbol)
}

func indexOf(lists []models.Wishlist, id string) int {
	for i := range lists {
		if lists[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneWishlist(w *models.Wishlist) *models.Wishlist {
	c := *w
	c.Stocks = append([]models.WishlistStock{}, w.Stocks...)
	return &c
}

func cloneAll(lists []models.Wishlist) []models.Wishlist {
	out := make([]models.Wishlist, len(lists))
	for i := range lists {
		out[i] = *cloneWishlist(&lists[i])
	}
	return out
}
