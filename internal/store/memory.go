package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PikaChewey/Sharpey/internal/model"
)

// MemoryStore keeps everything in process memory. Used when no database
// path is configured; nothing survives a restart.
type MemoryStore struct {
	mu         sync.Mutex
	portfolios []*model.SavedPortfolio
	username   string
	tested     int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{username: DefaultUsername}
}

func (m *MemoryStore) Save(p *model.SavedPortfolio) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Username == "" {
		p.Username = DefaultUsername
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}

	kept := m.portfolios[:0]
	for _, existing := range m.portfolios {
		if existing.Stock1 == p.Stock1 && existing.Stock2 == p.Stock2 && existing.Weight == p.Weight {
			continue
		}
		kept = append(kept, existing)
	}
	m.portfolios = append(kept, p)

	sort.SliceStable(m.portfolios, func(i, j int) bool {
		return m.portfolios[i].SharpeRatio > m.portfolios[j].SharpeRatio
	})
	if len(m.portfolios) > LeaderboardCap {
		m.portfolios = m.portfolios[:LeaderboardCap]
	}
	return nil
}

func (m *MemoryStore) List() ([]*model.SavedPortfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.SavedPortfolio, len(m.portfolios))
	copy(out, m.portfolios)
	return out, nil
}

func (m *MemoryStore) Username() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.username, nil
}

func (m *MemoryStore) SetUsername(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name == "" {
		name = DefaultUsername
	}
	m.username = name
	return nil
}

func (m *MemoryStore) IncrementTested() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tested++
	return m.tested, nil
}

func (m *MemoryStore) Tested() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tested, nil
}

func (m *MemoryStore) Close() error { return nil }
