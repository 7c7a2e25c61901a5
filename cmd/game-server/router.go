package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"chess-arena/internal/config"
	"chess-arena/internal/engine"
	"chess-arena/internal/ledger"
	"chess-arena/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func newRouter(st *store.Store, eng *engine.Engine, led *ledger.Ledger, cfg config.ServerConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(apiLogMiddleware()).Get("/healthz", healthHandler(st))

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLogMiddleware())
		r.Use(bodyCaptureMiddleware())

		r.Get("/public/ranking", rankingHandler(eng))
		r.Get("/public/finished", finishedHandler(eng))

		r.Group(func(r chi.Router) {
			r.Use(partyAuthMiddleware(st))
			r.Get("/me", meHandler())
			r.Post("/games", createGameHandler(eng))
			r.Get("/games", historyHandler(eng))
			r.Post("/games/move", moveHandler(eng))
			r.Post("/games/abandon", abandonHandler(eng))
			r.Get("/games/{game_id}", gameStatusHandler(eng))
			r.Get("/games/{game_id}/moves", gameMovesHandler(eng))
			r.Get("/games/{game_id}/certificate", certificateHandler(eng))
		})

		r.Group(func(r chi.Router) {
			r.Use(adminAuthMiddleware(cfg.AdminAPIKey))
			r.Get("/admin/parties", listPartiesHandler(st))
			r.Post("/admin/parties", createPartyHandler(st))
			r.Post("/admin/parties/{party_id}/tokens", setTokensHandler(led))
		})
	})
	return r
}

func healthHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func logRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
