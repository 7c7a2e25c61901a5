package engine_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"chess-arena/internal/chessoracle"
	"chess-arena/internal/config"
	"chess-arena/internal/engine"
	"chess-arena/internal/store"
)

// memStore is an in-memory stand-in for the Postgres store, honoring the
// same sentinels and the unique (session, seq) constraint.
type memStore struct {
	mu       sync.Mutex
	parties  map[string]*store.Party
	sessions map[string]*store.Session
	moves    map[string][]store.Move
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{
		parties:  make(map[string]*store.Party),
		sessions: make(map[string]*store.Session),
		moves:    make(map[string][]store.Move),
	}
}

func (m *memStore) newID(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s%d", prefix, m.nextID)
}

func (m *memStore) addParty(name string, tokensTU int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.newID("party")
	m.parties[id] = &store.Party{ID: id, Name: name, TokensTU: tokensTU, CreatedAt: time.Now()}
	return id
}

func (m *memStore) setTokens(id string, tokensTU int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parties[id].TokensTU = tokensTU
}

func (m *memStore) setPoints(id string, pointsTU int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parties[id].PointsTU = pointsTU
}

func (m *memStore) GetParty(_ context.Context, id string) (*store.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parties[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListPartiesByPoints(_ context.Context, descending bool) ([]store.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Party, 0, len(m.parties))
	for _, p := range m.parties {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PointsTU == out[j].PointsTU {
			return out[i].ID < out[j].ID
		}
		if descending {
			return out[i].PointsTU > out[j].PointsTU
		}
		return out[i].PointsTU < out[j].PointsTU
	})
	return out, nil
}

func (m *memStore) CreateSession(_ context.Context, draft store.Session) (*store.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	draft.ID = m.newID("sess")
	m.sessions[draft.ID] = &draft
	cp := draft
	return &cp, nil
}

func (m *memStore) GetSession(_ context.Context, id string) (*store.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) FindActiveSessionByParty(_ context.Context, partyID string) (*store.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.Status != store.SessionActive {
			continue
		}
		if s.Player1ID == partyID || (s.Player2ID != nil && *s.Player2ID == partyID) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) UpdateSessionState(_ context.Context, id string, cfg json.RawMessage, moveCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	s.Config = cfg
	s.MoveCount = moveCount
	return nil
}

func (m *memStore) FinishSession(_ context.Context, id string, winnerID *string, endedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Status != store.SessionActive {
		return store.ErrNotFound
	}
	s.Status = store.SessionFinished
	s.WinnerID = winnerID
	s.EndedAt = &endedAt
	return nil
}

func (m *memStore) ListFinishedSessions(_ context.Context) ([]store.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []store.Session{}
	for _, s := range m.sessions {
		if s.Status == store.SessionFinished {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListSessionsByParty(_ context.Context, partyID string, startedSince *time.Time) ([]store.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []store.Session{}
	for _, s := range m.sessions {
		if s.Player1ID != partyID && (s.Player2ID == nil || *s.Player2ID != partyID) {
			continue
		}
		if startedSince != nil && s.StartedAt.Before(*startedSince) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetWonSession(_ context.Context, id, winnerID string) (*store.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Status != store.SessionFinished || s.WinnerID == nil || *s.WinnerID != winnerID {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) AppendMove(_ context.Context, mv store.Move) (*store.Move, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.moves[mv.SessionID] {
		if existing.Seq == mv.Seq {
			return nil, fmt.Errorf("duplicate seq %d for session %s", mv.Seq, mv.SessionID)
		}
	}
	mv.ID = m.newID("move")
	mv.CreatedAt = time.Now()
	m.moves[mv.SessionID] = append(m.moves[mv.SessionID], mv)
	cp := mv
	return &cp, nil
}

func (m *memStore) ListMovesBySession(_ context.Context, sessionID string) ([]store.Move, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]store.Move{}, m.moves[sessionID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (m *memStore) LastMoveBySession(_ context.Context, sessionID string) (*store.Move, error) {
	moves, _ := m.ListMovesBySession(nil, sessionID)
	if len(moves) == 0 {
		return nil, store.ErrNotFound
	}
	cp := moves[len(moves)-1]
	return &cp, nil
}

func (m *memStore) HasSufficientTokens(_ context.Context, partyID string, amountTU int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parties[partyID]
	if !ok {
		return false, store.ErrNotFound
	}
	return p.TokensTU >= amountTU, nil
}

func (m *memStore) DebitTokens(_ context.Context, partyID string, amountTU int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parties[partyID]
	if !ok {
		return 0, store.ErrNotFound
	}
	if p.TokensTU < amountTU {
		return 0, store.ErrInsufficientFunds
	}
	p.TokensTU -= amountTU
	return p.TokensTU, nil
}

func (m *memStore) CreditPoints(_ context.Context, partyID string, amountTU int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parties[partyID]
	if !ok {
		return store.ErrNotFound
	}
	p.PointsTU += amountTU
	return nil
}

func (m *memStore) tokens(t *testing.T, id string) int64 {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parties[id].TokensTU
}

func (m *memStore) points(t *testing.T, id string) int64 {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parties[id].PointsTU
}

func testGameConfig() config.GameConfig {
	return config.GameConfig{
		CreateCostTU:     4500,
		MoveCostTU:       125,
		WinPrizeTU:       10000,
		AbandonPenaltyTU: -5000,
		StartingTokensTU: 10000,
	}
}

func newTestEngine() (*engine.Engine, *memStore) {
	m := newMemStore()
	return engine.New(m, m, m, m, chessoracle.New(), testGameConfig()), m
}
