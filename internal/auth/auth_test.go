package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

type memoryMembers struct {
	byID map[string]*models.Member
}

func newMemoryMembers() *memoryMembers {
	return &memoryMembers{byID: make(map[string]*models.Member)}
}

func (m *memoryMembers) CreateMember(_ context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = member.Email
	}
	m.byID[member.ID] = member
	return nil
}

func (m *memoryMembers) GetMemberByEmail(_ context.Context, email string) (*models.Member, error) {
	for _, member := range m.byID {
		if member.Email == email {
			return member, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memoryMembers) GetMember(_ context.Context, id string) (*models.Member, error) {
	if member, ok := m.byID[id]; ok {
		return member, nil
	}
	return nil, storage.ErrNotFound
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemoryMembers()).WithCost(bcrypt.MinCost)

	member, err := a.Register(ctx, " Alice@Example.com ", "Alice Brown", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", member.Email)
	assert.Equal(t, "AB", member.Initials)
	assert.NotEqual(t, "correct horse", member.PasswordHash)

	_, err = a.Register(ctx, "alice@example.com", "Other", "another password")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = a.Register(ctx, "bob@example.com", "Bob", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = a.Register(ctx, "not-an-email", "Bob", "long enough")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	got, err := a.Authenticate(ctx, "ALICE@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, member.ID, got.ID)

	_, err = a.Authenticate(ctx, "alice@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Authenticate(ctx, "nobody@example.com", "whatever1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err = a.Lookup(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Brown", got.Name)

	_, err = a.Lookup(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRegister_DefaultsDisplayName(t *testing.T) {
	a := NewPasswordAuthenticator(newMemoryMembers()).WithCost(bcrypt.MinCost)

	member, err := a.Register(context.Background(), "carol@example.com", "  ", "password1")
	require.NoError(t, err)
	assert.Equal(t, "carol", member.Name)
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	member := &models.Member{ID: "member-1", Email: "alice@example.com"}

	token, err := m.Generate(member)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "member-1", claims.MemberID)
	assert.Equal(t, "alice@example.com", claims.Email)

	_, err = NewJWTManager("other-secret", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewJWTManager("test-secret", -time.Minute).Generate(member)
	require.NoError(t, err)
	_, err = m.Validate(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
