package store

import (
	"context"
	"sort"
	"sync"

	"coinsec/internal/game"
)

// Memory keeps everything in process. It is the default for tests and
// for running the API without a database.
type Memory struct {
	mu        sync.RWMutex
	players   map[string]game.Snapshot
	purchases map[string][]game.Purchase
}

func NewMemory() *Memory {
	return &Memory{
		players:   make(map[string]game.Snapshot),
		purchases: make(map[string][]game.Purchase),
	}
}

func (m *Memory) Load(_ context.Context, playerID string) (game.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.players[playerID]
	if !ok {
		return game.Snapshot{}, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *Memory) Save(_ context.Context, playerID string, s game.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[playerID] = s.Clone()
	return nil
}

func (m *Memory) PlayerIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.players))
	for id := range m.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Memory) TopByPoints(_ context.Context, limit int) ([]game.LeaderboardRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := make([]game.LeaderboardRow, 0, len(m.players))
	for id, s := range m.players {
		rows = append(rows, game.LeaderboardRow{PlayerID: id, Points: s.Points})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for i := range rows {
		rows[i].Rank = int64(i + 1)
	}
	return rows, nil
}

func (m *Memory) RecordPurchase(_ context.Context, p game.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purchases[p.PlayerID] = append([]game.Purchase{p}, m.purchases[p.PlayerID]...)
	return nil
}

func (m *Memory) Purchases(_ context.Context, playerID string, limit int) ([]game.Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.purchases[playerID]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	cp := make([]game.Purchase, len(out))
	copy(cp, out)
	return cp, nil
}

func (m *Memory) Close() error {
	return nil
}
