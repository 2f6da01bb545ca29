package toolstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
)

// Memory is a process-local tool store. The serve command falls back to it
// when no database URL is configured.
type Memory struct {
	mu    sync.RWMutex
	tools map[string]*schemas.ToolRecord
}

func NewMemory() *Memory {
	return &Memory{tools: make(map[string]*schemas.ToolRecord)}
}

func (m *Memory) Save(_ context.Context, tool *schemas.ToolRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := m.tools[tool.Name]; ok {
		tool.ID = existing.ID
		tool.CreatedAt = existing.CreatedAt
	} else {
		if tool.ID == "" {
			tool.ID = uuid.NewString()
		}
		tool.CreatedAt = now
	}
	tool.UpdatedAt = now
	cp := *tool
	m.tools[tool.Name] = &cp
	return nil
}

func (m *Memory) Get(_ context.Context, name string) (*schemas.ToolRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tool, ok := m.tools[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *tool
	return &cp, nil
}

func (m *Memory) List(_ context.Context) ([]*schemas.ToolRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*schemas.ToolRecord, 0, len(m.tools))
	for _, tool := range m.tools {
		cp := *tool
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tools[name]; !ok {
		return ErrNotFound
	}
	delete(m.tools, name)
	return nil
}
