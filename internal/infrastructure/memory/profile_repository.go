package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
)

type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]entity.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[string]entity.Profile)}
}

func (r *ProfileRepository) GetByUID(_ context.Context, uid string) (*entity.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[uid]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &p, nil
}

func (r *ProfileRepository) Create(_ context.Context, p *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.UID]; ok {
		return domain.ErrDuplicateAccount
	}
	r.profiles[p.UID] = *p
	return nil
}

func (r *ProfileRepository) RecordLogin(_ context.Context, uid string, refresh repository.ProfileRefresh, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if refresh.Email != "" {
		p.Email = refresh.Email
	}
	if refresh.DisplayName != "" {
		p.DisplayName = refresh.DisplayName
	}
	if refresh.PhotoURL != "" {
		p.PhotoURL = refresh.PhotoURL
	}
	last := at
	p.LastLogin = &last
	p.UpdatedAt = at
	r.profiles[uid] = p
	return nil
}

func (r *ProfileRepository) Delete(_ context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, uid)
	return nil
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
