package handlers

import (
	"net/http"
	"strconv"

	"github.com/pysugar/outreach-mailer/internal/apperr"
	"github.com/pysugar/outreach-mailer/internal/db"
)

// SendHistoryHandler returns recent dispatch attempts with aggregate counters.
// GET /api/history?limit=<n>
func SendHistoryHandler(store *db.CredentialStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		logs, err := store.RecentSends(r.Context(), limit)
		if err != nil {
			writeError(w, r, apperr.E(apperr.KindStoreWriteFailed, "loading send history", err))
			return
		}
		stats, err := store.SendStats(r.Context())
		if err != nil {
			writeError(w, r, apperr.E(apperr.KindStoreWriteFailed, "loading send stats", err))
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"sends": logs,
			"stats": stats,
		})
	}
}
