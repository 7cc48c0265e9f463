package media

import (
	"context"
	"sync"

	"letsconnect/internal/models"

	"github.com/gofrs/uuid"
)

// MemoryStore keeps uploads in process.
type MemoryStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

func (m *MemoryStore) Upload(ctx context.Context, data []byte, originalName string) (*models.Media, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := uuid.Must(uuid.NewV4()).String()

	m.mu.Lock()
	m.files[id] = append([]byte(nil), data...)
	m.mu.Unlock()

	return &models.Media{FileID: id, FileName: originalName, URL: "memory://" + id + "/" + originalName}, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id, name string) bool {
	if id == "" || id == DefaultFileID {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return false
	}
	delete(m.files, id)
	return true
}

// Has reports whether id is stored.
func (m *MemoryStore) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[id]
	return ok
}
