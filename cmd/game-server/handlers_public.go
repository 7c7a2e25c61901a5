package main

import (
	"encoding/json"
	"net/http"

	"chess-arena/internal/engine"
)

func rankingHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order := r.URL.Query().Get("order")
		if order == "" {
			order = "desc"
		}
		items, err := eng.Ranking(r.Context(), order)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		out := make([]map[string]any, 0, len(items))
		for _, it := range items {
			out = append(out, map[string]any{
				"party_id":  it.ID,
				"name":      it.Name,
				"points_tu": it.PointsTU,
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": out})
	}
}

func finishedHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := eng.FinishedSessions(r.Context())
		if err != nil {
			writeEngineError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": historyItems(items)})
	}
}
