package library

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryRegisterAndVerify(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(tempDB(t))
	dir.now = newFakeClock(2024, time.February, 29).Now

	err := dir.Register(ctx, Member{ID: " M1 ", Name: "Juan", Email: "juan@example.com", Phone: "0917"}, "s3cret")
	require.NoError(t, err)

	m, err := dir.Get(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, "Juan", m.Name)
	assert.Equal(t, NewDate(2024, time.February, 29), m.DateRegistered)
	assert.NotEqual(t, "s3cret", m.PasswordHash, "credential must not be stored in plaintext")

	ok, err := dir.Verify(ctx, "M1", "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = dir.Verify(ctx, "M1", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = dir.Verify(ctx, "nobody", "s3cret")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDirectoryDuplicateMember(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(tempDB(t))

	require.NoError(t, dir.Register(ctx, Member{ID: "M1", Name: "Juan"}, "a"))
	err := dir.Register(ctx, Member{ID: "M1", Name: "Pedro"}, "b")
	require.ErrorIs(t, err, ErrDuplicateMember)
	assert.ErrorIs(t, err, ErrIntegrityViolation)

	m, err := dir.Get(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, "Juan", m.Name)
}

func TestDirectoryRegisterValidation(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(tempDB(t))

	tests := []struct {
		name   string
		member Member
		secret string
	}{
		{"missing id", Member{Name: "Juan"}, "pw"},
		{"missing name", Member{ID: "M1"}, "pw"},
		{"bad email", Member{ID: "M1", Name: "Juan", Email: "not-an-email"}, "pw"},
		{"empty password", Member{ID: "M1", Name: "Juan"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, dir.Register(ctx, tt.member, tt.secret))
		})
	}

	members, err := dir.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestDirectoryListAndResetPassword(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(tempDB(t))
	require.NoError(t, dir.Register(ctx, Member{ID: "Z9", Name: "Zed"}, "old"))
	require.NoError(t, dir.Register(ctx, Member{ID: "A1", Name: "Ana"}, "pw"))

	members, err := dir.List(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Z9", members[0].ID, "registration order")
	assert.Equal(t, "A1", members[1].ID)

	require.NoError(t, dir.ResetPassword(ctx, "Z9", "new"))
	ok, err := dir.Verify(ctx, "Z9", "new")
	require.NoError(t, err)
	assert.True(t, ok)

	err = dir.ResetPassword(ctx, "missing", "pw")
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = dir.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
