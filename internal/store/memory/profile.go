package memory

import (
	"context"

	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/gofrs/uuid"
)

type ProfileRepository struct {
	s *Store
}

func (r *ProfileRepository) GetByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.s.profileRef(id)
	if p == nil {
		return nil, profile.ErrNotFound
	}
	return p, nil
}

// Put inserts or replaces a profile without credentials, for seeding.
func (r *ProfileRepository) Put(p profile.Profile) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.profiles[p.ID] = p
	r.s.emails[p.Email] = p.ID
}

// Delete removes a profile, leaving its sessions in place.
func (r *ProfileRepository) Delete(id uuid.UUID) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.profiles[id]; ok {
		delete(r.s.emails, p.Email)
		delete(r.s.profiles, id)
	}
}
