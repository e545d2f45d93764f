package api

import (
	"context"
	"net/http"
	"time"

	"github.com/nerrad567/ulc-deck/internal/deck"
	"github.com/nerrad567/ulc-deck/internal/relay"
	"github.com/nerrad567/ulc-deck/internal/telemetry"
)

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Surface       *SurfaceStatus   `json:"surface,omitempty"`
	Relays        []relay.Status   `json:"relays"`
	Deck          deck.Status      `json:"deck"`
	Telemetry     *telemetry.Stats `json:"telemetry,omitempty"`
}

// SurfaceStatus describes the Stream Deck connection.
type SurfaceStatus struct {
	Connected bool `json:"connected"`
}

// handleStatus reports relay counters directly and reads deck state on the
// event loop.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), loopCallTimeout)
	defer cancel()

	var ds deck.Status
	if err := s.loop.Call(ctx, func() { ds = s.deck.Status() }); err != nil {
		s.logger.Warn("status read from event loop failed", "error", err)
		fail(w, r, http.StatusServiceUnavailable, "event loop unavailable")
		return
	}

	resp := StatusResponse{
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Relays:        make([]relay.Status, 0, len(s.relays)),
		Deck:          ds,
	}
	for _, rs := range s.relays {
		resp.Relays = append(resp.Relays, rs.Status())
	}
	if s.surface != nil {
		resp.Surface = &SurfaceStatus{Connected: s.surface.Connected()}
	}
	if s.telemetry != nil {
		stats := s.telemetry.Stats()
		resp.Telemetry = &stats
	}

	writeJSON(w, http.StatusOK, resp)
}
