package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/ulc-deck/internal/journal"
)

// handleListEvents returns paginated journal entries, newest first.
//
// Query parameters:
//   - kind: intent, edge, profile, or snapshot
//   - channel: ulc or lvc
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := journal.Filter{
		Kind:    q.Get("kind"),
		Channel: q.Get("channel"),
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail(w, r, http.StatusBadRequest, "limit must be an integer")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail(w, r, http.StatusBadRequest, "offset must be an integer")
			return
		}
		filter.Offset = n
	}

	if s.journal == nil {
		writeJSON(w, http.StatusOK, journal.ListResult{
			Entries: []journal.Entry{},
			Limit:   journal.DefaultLimit,
		})
		return
	}

	result, err := s.journal.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list journal entries", "error", err)
		fail(w, r, http.StatusInternalServerError, "failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
