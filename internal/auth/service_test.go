package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStaffStore: test double sederhana untuk StaffStore.
type memStaffStore struct {
	byUsername map[string]*Staff
}

func newMemStaffStore() *memStaffStore {
	return &memStaffStore{byUsername: make(map[string]*Staff)}
}

func (m *memStaffStore) Create(ctx context.Context, s *Staff) error {
	s.ID = "staff-" + s.Username
	s.Active = true
	s.CreatedAt = time.Now()
	cp := *s
	m.byUsername[s.Username] = &cp
	return nil
}

func (m *memStaffStore) GetByUsername(ctx context.Context, username string) (*Staff, error) {
	s, ok := m.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStaffStore) List(ctx context.Context) ([]Staff, error) {
	out := make([]Staff, 0, len(m.byUsername))
	for _, s := range m.byUsername {
		out = append(out, *s)
	}
	return out, nil
}

func (m *memStaffStore) Deactivate(ctx context.Context, id string) error {
	for _, s := range m.byUsername {
		if s.ID == id {
			s.Active = false
			return nil
		}
	}
	return ErrNotFound
}

func newTestService() (*Service, *memStaffStore) {
	store := newMemStaffStore()
	svc := &Service{
		Staff:      store,
		Tokens:     &TokenMaker{Secret: []byte("test-secret"), TTL: time.Hour},
		BcryptCost: 4, // cost minimum biar test cepat
	}
	return svc, store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	st, err := svc.Register(ctx, "budi", "rahasia-banget", RoleStaff)
	require.NoError(t, err)
	assert.NotEqual(t, "rahasia-banget", st.PasswordHash)

	token, got, err := svc.Login(ctx, "budi", "rahasia-banget")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, st.ID, got.ID)

	claims, err := svc.Tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, "budi", "rahasia-banget", RoleStaff)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "budi", "salah")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, _, err = svc.Login(ctx, "nobody", "salah")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestLoginInactiveStaff(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	st, err := svc.Register(ctx, "budi", "rahasia-banget", RoleStaff)
	require.NoError(t, err)
	require.NoError(t, store.Deactivate(ctx, st.ID))

	_, _, err = svc.Login(ctx, "budi", "rahasia-banget")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "rahasia-banget", RoleStaff)
	assert.Error(t, err)

	_, err = svc.Register(ctx, "budi", "pendek", RoleStaff)
	assert.Error(t, err)

	_, err = svc.Register(ctx, "budi", "rahasia-banget", Role("SUPER"))
	assert.Error(t, err)
}
