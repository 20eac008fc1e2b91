package auth

import (
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	rec := &SessionRecord{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    uuid.Must(uuid.NewV4()),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	token, err := m.Issue(rec)
	require.NoError(t, err)

	sessionID, userID, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, sessionID)
	assert.Equal(t, rec.UserID, userID)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Issue(&SessionRecord{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    uuid.Must(uuid.NewV4()),
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	_, _, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Contains(t, err.Error(), "token expired")
}

func TestSessionRecord_Active(t *testing.T) {
	now := time.Date(2025, 4, 16, 12, 0, 0, 0, time.UTC)
	rec := SessionRecord{ExpiresAt: now.Add(time.Minute)}
	assert.True(t, rec.Active(now))
	assert.False(t, rec.Active(now.Add(time.Minute)))

	rec.RevokedAt = &now
	assert.False(t, rec.Active(now))
}
