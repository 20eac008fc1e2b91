package memory

import (
	"context"
	"time"

	"github.com/Aditya2073/agrisample/internal/auth"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/gofrs/uuid"
)

type AuthRepository struct {
	s *Store
}

func (r *AuthRepository) CreateAccount(_ context.Context, p *profile.Profile, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.emails[p.Email]; ok {
		return auth.ErrEmailExists
	}
	r.s.profiles[p.ID] = *p
	r.s.emails[p.Email] = p.ID
	r.s.creds[p.ID] = passwordHash
	return nil
}

func (r *AuthRepository) GetAccountByEmail(_ context.Context, email string) (*auth.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.emails[email]
	if !ok {
		return nil, auth.ErrNotFound
	}
	hash, ok := r.s.creds[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &auth.Account{UserID: id, Email: email, PasswordHash: hash}, nil
}

func (r *AuthRepository) CreateSession(_ context.Context, rec *auth.SessionRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[rec.ID] = *rec
	return nil
}

func (r *AuthRepository) GetSession(_ context.Context, id uuid.UUID) (*auth.SessionRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.sessions[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &rec, nil
}

func (r *AuthRepository) RevokeSession(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.sessions[id]
	if !ok {
		return auth.ErrNotFound
	}
	rec.RevokedAt = &at
	r.s.sessions[id] = rec
	return nil
}
