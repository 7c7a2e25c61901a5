package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"chess-arena/internal/chessoracle"
	"chess-arena/internal/config"
	"chess-arena/internal/engine"
	"chess-arena/internal/ledger"
	"chess-arena/internal/logging"
	"chess-arena/internal/store"

	"github.com/rs/zerolog/log"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	// Optional seed from env
	seedParties(st, cfg.Server.SeedParties, cfg.Game.StartingTokensTU)

	led := ledger.New(st)
	eng := engine.New(st, st, st, led, chessoracle.New(), cfg.Game)

	r := newRouter(st, eng, led, cfg.Server)
	logRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

// seedParties creates the named parties with the starting balance, but only
// into an empty table.
func seedParties(st *store.Store, names []string, initialTU int64) {
	if len(names) == 0 {
		return
	}
	ctx := context.Background()
	n, err := st.CountParties(ctx)
	if err != nil {
		log.Error().Err(err).Msg("seed party count error")
		return
	}
	if n > 0 {
		return
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, err := st.CreateParty(ctx, name, initialTU)
		if err != nil {
			log.Error().Err(err).Str("name", name).Msg("seed party error")
			continue
		}
		log.Info().Str("party_id", id).Str("name", name).Msg("seeded party")
	}
}
