package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Aditya2073/agrisample/internal/auth"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/Aditya2073/agrisample/internal/store/memory"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (auth.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return auth.NewService(store.Accounts(), auth.NewTokenManager("test-secret", time.Hour)), store
}

func signUpInput() auth.SignUpInput {
	return auth.SignUpInput{
		Email:    "  Asha@Example.com ",
		Password: "correct horse",
		Name:     "Asha",
		Phone:    "+91 98450 00000",
		Role:     profile.RoleFarmer,
	}
}

func TestService_SignUpAndSignIn(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	sess, p, err := svc.SignUp(ctx, signUpInput())
	require.NoError(t, err)
	require.NotEmpty(t, sess.AccessToken)
	assert.Equal(t, p.ID, sess.UserID)
	assert.Equal(t, "asha@example.com", p.Email)
	assert.Equal(t, profile.RoleFarmer, p.Role)

	stored, err := store.Profiles().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", stored.Name)

	signedIn, err := svc.SignIn(ctx, auth.SignInInput{Email: "ASHA@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, signedIn.UserID)
	assert.NotEqual(t, sess.AccessToken, signedIn.AccessToken, "each sign in opens its own session")

	got, err := svc.Session(ctx, signedIn.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.UserID)
}

func TestService_SignUp_DuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, signUpInput())
	require.NoError(t, err)

	in := signUpInput()
	in.Email = "asha@example.com"
	in.Role = profile.RoleBuyer
	_, _, err = svc.SignUp(ctx, in)
	assert.Equal(t, auth.ErrEmailExists, err)
}

func TestService_SignUp_Invalid(t *testing.T) {
	svc, _ := newService(t)

	in := signUpInput()
	in.Role = "admin"
	_, _, err := svc.SignUp(context.Background(), in)
	assert.Error(t, err)

	in = signUpInput()
	in.Password = ""
	_, _, err = svc.SignUp(context.Background(), in)
	assert.EqualError(t, err, "password cannot be empty")
}

func TestService_SignIn_InvalidCredentials(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, _, err := svc.SignUp(ctx, signUpInput())
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, auth.SignInInput{Email: "asha@example.com", Password: "wrong"})
	assert.Equal(t, auth.ErrInvalidCredentials, err)

	_, err = svc.SignIn(ctx, auth.SignInInput{Email: "nobody@example.com", Password: "correct horse"})
	assert.Equal(t, auth.ErrInvalidCredentials, err)
}

func TestService_SignOutRevokesSession(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	sess, _, err := svc.SignUp(ctx, signUpInput())
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, sess.AccessToken))

	_, err = svc.Session(ctx, sess.AccessToken)
	assert.ErrorIs(t, err, auth.ErrSessionRevoked)
	assert.ErrorIs(t, svc.SignOut(ctx, sess.AccessToken), auth.ErrSessionRevoked)
}

func TestService_Session_BadTokens(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	sess, _, err := svc.SignUp(ctx, signUpInput())
	require.NoError(t, err)

	other := auth.NewTokenManager("another-secret", time.Hour)
	forged, err := other.Issue(&auth.SessionRecord{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    sess.UserID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage": "not-a-jwt",
		"empty":   "",
		"forged":  forged,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Session(ctx, token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestService_Session_UnknownSession(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := auth.NewService(memory.New().Accounts(), tokens)

	token, err := tokens.Issue(&auth.SessionRecord{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    uuid.Must(uuid.NewV4()),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.Session(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

type MockAuthRepository struct {
	mock.Mock
}

func (m *MockAuthRepository) CreateAccount(ctx context.Context, p *profile.Profile, hash string) error {
	return m.Called(ctx, p, hash).Error(0)
}

func (m *MockAuthRepository) GetAccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Account), args.Error(1)
}

func (m *MockAuthRepository) CreateSession(ctx context.Context, s *auth.SessionRecord) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockAuthRepository) GetSession(ctx context.Context, id uuid.UUID) (*auth.SessionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.SessionRecord), args.Error(1)
}

func (m *MockAuthRepository) RevokeSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func TestService_SignUp_RepositoryFailure(t *testing.T) {
	mockRepo := new(MockAuthRepository)
	svc := auth.NewService(mockRepo, auth.NewTokenManager("test-secret", time.Hour))
	dbErr := errors.New("connection refused")

	mockRepo.On("CreateAccount", mock.Anything, mock.AnythingOfType("*profile.Profile"), mock.AnythingOfType("string")).
		Return(dbErr).Once()

	_, _, err := svc.SignUp(context.Background(), signUpInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	mockRepo.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}
