package server

import "net/http"

// handleCacheStats handles GET /api/cache.
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.app.Cache.Stats(r.Context()))
}

// handleCacheClear handles DELETE /api/cache.
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	removed := s.app.Cache.ClearAll(r.Context())
	s.logger.Info().Int("removed", removed).Msg("Cache cleared")
	WriteJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// handleCacheClearExpired handles POST /api/cache/expired.
func (s *Server) handleCacheClearExpired(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]int{"removed": s.app.Cache.ClearExpired(r.Context())})
}
