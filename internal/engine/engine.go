// Package engine orchestrates turn-based game sessions: lifecycle, the move
// pipeline with its chained computer reply, abandonment, and the economy
// side-effects coupled to session outcomes. Move legality itself is
// delegated to the Oracle.
package engine

import (
	"chess-arena/internal/config"
)

type Engine struct {
	parties  PartyStore
	sessions SessionStore
	moves    MoveStore
	ledger   Ledger
	oracle   Oracle
	cfg      config.GameConfig

	// Per-session exclusion for the whole move pipeline, per-party
	// exclusion for session creation.
	sessionLocks *keyedLocks
	partyLocks   *keyedLocks
}

func New(parties PartyStore, sessions SessionStore, moves MoveStore, led Ledger, oracle Oracle, cfg config.GameConfig) *Engine {
	return &Engine{
		parties:      parties,
		sessions:     sessions,
		moves:        moves,
		ledger:       led,
		oracle:       oracle,
		cfg:          cfg,
		sessionLocks: newKeyedLocks(),
		partyLocks:   newKeyedLocks(),
	}
}
