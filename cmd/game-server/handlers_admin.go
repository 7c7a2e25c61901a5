package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"chess-arena/internal/ledger"
	"chess-arena/internal/store"

	"github.com/go-chi/chi/v5"
)

func partyIDParam(r *http.Request) string {
	return chi.URLParam(r, "party_id")
}

func listPartiesHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := st.ListPartiesByPoints(r.Context(), true)
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		out := make([]map[string]any, 0, len(items))
		for _, p := range items {
			out = append(out, map[string]any{
				"party_id":   p.ID,
				"name":       p.Name,
				"tokens_tu":  p.TokensTU,
				"points_tu":  p.PointsTU,
				"created_at": p.CreatedAt,
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": out})
	}
}

func createPartyHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name     string `json:"name"`
			TokensTU int64  `json:"tokens_tu"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.Name == "" || body.TokensTU < 0 {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		id, err := st.CreateParty(r.Context(), body.Name, body.TokensTU)
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "party_id": id})
	}
}

func setTokensHandler(led *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TokensTU int64 `json:"tokens_tu"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.TokensTU < 0 {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		partyID := partyIDParam(r)
		if partyID == "" {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := led.SetTokens(r.Context(), partyID, body.TokensTU); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeHTTPError(w, http.StatusNotFound, "not_found")
				return
			}
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}
