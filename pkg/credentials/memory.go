package credentials

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Suitable for tests and single-process deployments where
// credentials do not need to survive a restart.
type Memory struct {
	lock   sync.Mutex
	tokens map[string]string
}

func NewMemory() *Memory {
	return &Memory{tokens: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, vehicleID string) (string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	token, ok := m.tokens[vehicleID]
	if !ok {
		return "", ErrNotFound
	}
	return token, nil
}

func (m *Memory) Put(_ context.Context, vehicleID, token string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.tokens[vehicleID] = token
	return nil
}
