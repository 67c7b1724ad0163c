package mocks

import (
	"fmt"
	"sync"

	"github.com/oxgrid/tictactoe/internal/dependencies/ids"
	"github.com/oxgrid/tictactoe/internal/model"
)

// MockIDs is a mock id Generator returning queued ids, then "player-N"
type MockIDs struct {
	mu     sync.Mutex
	queued []model.PlayerID
	issued int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// PlayerID returns the next queued id or a sequential fallback
func (m *MockIDs) PlayerID() model.PlayerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued++
	if len(m.queued) > 0 {
		id := m.queued[0]
		m.queued = m.queued[1:]
		return id
	}
	return model.PlayerID(fmt.Sprintf("player-%d", m.issued))
}

// Queue adds ids to be returned in order
func (m *MockIDs) Queue(values ...model.PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, values...)
}
