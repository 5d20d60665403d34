package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
)

// SessionStore keeps sessions in process memory. Expired records are removed
// lazily on Get.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]entity.SessionRecord
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]entity.SessionRecord), now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, rec entity.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[rec.ID] = rec
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*entity.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if rec.Expired(s.now()) {
		delete(s.sessions, id)
		return nil, domain.ErrSessionNotFound
	}
	return &rec, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

var _ repository.SessionStore = (*SessionStore)(nil)
