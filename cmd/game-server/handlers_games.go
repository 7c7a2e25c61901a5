package main

import (
	"encoding/json"
	"net/http"
	"time"

	"chess-arena/internal/engine"
	"chess-arena/internal/export"

	"github.com/go-chi/chi/v5"
)

func gameID(r *http.Request) string {
	return chi.URLParam(r, "game_id")
}

func meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := requestParty(r)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"party_id":   p.ID,
			"name":       p.Name,
			"tokens_tu":  p.TokensTU,
			"points_tu":  p.PointsTU,
			"created_at": p.CreatedAt,
		})
	}
}

func createGameHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			OpponentID string `json:"opponent_id"`
			AILevel    string `json:"ai_level"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if (body.OpponentID == "") == (body.AILevel == "") {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		var opponentID *string
		var level *engine.SkillLevel
		if body.OpponentID != "" {
			opponentID = &body.OpponentID
		} else {
			lvl, err := engine.ParseSkillLevel(body.AILevel)
			if err != nil {
				writeEngineError(w, err)
				return
			}
			level = &lvl
		}

		sess, err := eng.CreateSession(r.Context(), requestParty(r).ID, opponentID, level)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"game_id":    sess.ID,
			"status":     sess.Status,
			"started_at": sess.StartedAt,
			"config":     sess.Config,
		})
	}
}

func moveHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			From string `json:"from"`
			To   string `json:"to"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.From == "" || body.To == "" {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		out, err := eng.SubmitMove(r.Context(), requestParty(r).ID, body.From, body.To)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		resp := map[string]any{
			"game_id":   out.SessionID,
			"narrative": out.Narrative,
			"finished":  out.Finished,
			"draw":      out.Draw,
			"winner_id": out.WinnerID,
		}
		if out.LedgerWarning != "" {
			resp["warning"] = out.LedgerWarning
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func abandonHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := eng.Abandon(r.Context(), requestParty(r).ID); err != nil {
			writeEngineError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func gameStatusHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := eng.SessionStatus(r.Context(), requestParty(r).ID, gameID(r))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"game_id":    view.SessionID,
			"status":     view.Status,
			"opponent":   view.Opponent,
			"turn_party": view.TurnParty,
			"move_count": view.MoveCount,
			"winner_id":  view.WinnerID,
			"started_at": view.StartedAt,
			"ended_at":   view.EndedAt,
			"config":     view.Config,
		})
	}
}

func historyHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var since *time.Time
		if v := r.URL.Query().Get("since"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				writeHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			since = &t
		}
		items, err := eng.History(r.Context(), requestParty(r).ID, since)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": historyItems(items)})
	}
}

func gameMovesHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := export.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		id := gameID(r)
		moves, err := eng.SessionMoves(r.Context(), requestParty(r).ID, id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		data, err := export.MoveLog(id, moves, format)
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		if format == export.FormatPDF {
			w.Header().Set("Content-Disposition", `attachment; filename="moves_`+id+`.pdf"`)
		}
		_, _ = w.Write(data)
	}
}

func certificateHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cert, err := eng.WinCertificate(r.Context(), requestParty(r).ID, gameID(r))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		data, err := export.Certificate(cert)
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="certificate_`+cert.SessionID+`.pdf"`)
		_, _ = w.Write(data)
	}
}

func historyItems(items []engine.HistoryItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{
			"game_id":    it.SessionID,
			"status":     it.Status,
			"move_count": it.MoveCount,
			"started_at": it.StartedAt,
			"winner_id":  it.WinnerID,
		})
	}
	return out
}
