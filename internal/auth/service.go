package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	// CreateAccount stores the profile and its credentials together.
	CreateAccount(ctx context.Context, p *profile.Profile, passwordHash string) error
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	CreateSession(ctx context.Context, s *SessionRecord) error
	GetSession(ctx context.Context, id uuid.UUID) (*SessionRecord, error)
	RevokeSession(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Service interface {
	SignUp(ctx context.Context, in SignUpInput) (*Session, *profile.Profile, error)
	SignIn(ctx context.Context, in SignInInput) (*Session, error)
	SignOut(ctx context.Context, token string) error
	// Session resolves an access token to its live session.
	Session(ctx context.Context, token string) (*Session, error)
}

type service struct {
	repo   Repository
	tokens *TokenManager
	now    func() time.Time
}

func NewService(repo Repository, tokens *TokenManager) Service {
	return &service{repo: repo, tokens: tokens, now: time.Now}
}

func (s *service) SignUp(ctx context.Context, in SignUpInput) (*Session, *profile.Profile, error) {
	if !in.Role.Valid() {
		return nil, nil, fmt.Errorf("service: unknown role %q", in.Role)
	}
	if in.Password == "" {
		return nil, nil, errors.New("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to generate password hash")
		return nil, nil, fmt.Errorf("internal error hashing password: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, nil, fmt.Errorf("service: failed to generate profile id: %w", err)
	}

	p := &profile.Profile{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		Email:     normalizeEmail(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      in.Role,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.CreateAccount(ctx, p, string(hash)); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, nil, ErrEmailExists
		}
		log.Error().Err(err).Msg("service: failed to create account")
		return nil, nil, fmt.Errorf("service: failed to create account: %w", err)
	}

	sess, err := s.openSession(ctx, p.ID)
	if err != nil {
		return nil, nil, err
	}

	log.Info().Stringer("user_id", p.ID).Str("role", p.Role.String()).Msg("service: account registered")
	return sess, p, nil
}

func (s *service) SignIn(ctx context.Context, in SignInInput) (*Session, error) {
	acc, err := s.repo.GetAccountByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("service: failed to look up account")
		return nil, fmt.Errorf("service: failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(in.Password)); err != nil {
		log.Warn().Stringer("user_id", acc.UserID).Msg("service: password mismatch")
		return nil, ErrInvalidCredentials
	}

	sess, err := s.openSession(ctx, acc.UserID)
	if err != nil {
		return nil, err
	}
	log.Info().Stringer("user_id", acc.UserID).Msg("service: signed in")
	return sess, nil
}

func (s *service) SignOut(ctx context.Context, token string) error {
	rec, err := s.lookup(ctx, token)
	if err != nil {
		return err
	}
	if err := s.repo.RevokeSession(ctx, rec.ID, s.now().UTC()); err != nil {
		log.Error().Err(err).Stringer("session_id", rec.ID).Msg("service: failed to revoke session")
		return fmt.Errorf("service: failed to revoke session: %w", err)
	}
	log.Info().Stringer("user_id", rec.UserID).Stringer("session_id", rec.ID).Msg("service: signed out")
	return nil
}

func (s *service) Session(ctx context.Context, token string) (*Session, error) {
	rec, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, UserID: rec.UserID, ExpiresAt: rec.ExpiresAt}, nil
}

func (s *service) lookup(ctx context.Context, token string) (*SessionRecord, error) {
	sessionID, userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("service: failed to load session: %w", err)
	}
	if rec.UserID != userID {
		return nil, ErrInvalidToken
	}
	if !rec.Active(s.now()) {
		return nil, ErrSessionRevoked
	}
	return rec, nil
}

func (s *service) openSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate session id: %w", err)
	}
	now := s.now().UTC()
	rec := &SessionRecord{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokens.TTL()),
	}
	if err := s.repo.CreateSession(ctx, rec); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to store session")
		return nil, fmt.Errorf("service: failed to store session: %w", err)
	}

	token, err := s.tokens.Issue(rec)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, UserID: userID, ExpiresAt: rec.ExpiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
