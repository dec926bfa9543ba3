package authsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agronexus/marketplace/internal/apperrors"
	"github.com/agronexus/marketplace/internal/service/models/user"
)

type fakeUserRepo struct {
	users map[string]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]user.User)}
}

func (f *fakeUserRepo) Insert(_ context.Context, u user.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, u user.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func newTestService() *AuthService {
	return MustNewAuthService(
		WithUserRepository(newFakeUserRepo()),
		WithSecret([]byte("test-secret")),
	)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService()

	u, token, err := svc.Register(context.Background(), RegisterInput{
		Username: "wanjiku",
		Email:    "wanjiku@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, user.TypeBuyer, u.Type)
	assert.NotEqual(t, "s3cret", u.PasswordHash)

	logged, token, err := svc.Login(context.Background(), "wanjiku@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, u.ID, logged.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Username: "a", Email: "dup@example.com", Password: "x",
	})
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), RegisterInput{
		Username: "b", Email: "dup@example.com", Password: "x",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Username: "same", Email: "one@example.com", Password: "x",
	})
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), RegisterInput{
		Username: "same", Email: "two@example.com", Password: "x",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRegisterDropsFarmFieldsForBuyers(t *testing.T) {
	svc := newTestService()

	u, _, err := svc.Register(context.Background(), RegisterInput{
		Username: "buyer",
		Email:    "buyer@example.com",
		Password: "x",
		UserType: user.TypeBuyer,
		FarmName: "Green Acres",
		Location: "Nakuru",
	})
	require.NoError(t, err)
	assert.Empty(t, u.FarmName)
	assert.Empty(t, u.Location)

	farmer, _, err := svc.Register(context.Background(), RegisterInput{
		Username: "farmer",
		Email:    "farmer@example.com",
		Password: "x",
		UserType: user.TypeFarmer,
		FarmName: "Green Acres",
		Location: "Nakuru",
	})
	require.NoError(t, err)
	assert.Equal(t, "Green Acres", farmer.FarmName)
	assert.Equal(t, "Nakuru", farmer.Location)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Username: "wanjiku", Email: "wanjiku@example.com", Password: "s3cret",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "wanjiku@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestVerifyToken(t *testing.T) {
	svc := newTestService()

	u, token, err := svc.Register(context.Background(), RegisterInput{
		Username: "wanjiku", Email: "wanjiku@example.com", Password: "s3cret",
	})
	require.NoError(t, err)

	resolved, err := svc.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, resolved.ID)

	_, err = svc.VerifyToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestUpdateProfileAuthorization(t *testing.T) {
	svc := newTestService()

	owner, _, err := svc.Register(context.Background(), RegisterInput{
		Username: "owner", Email: "owner@example.com", Password: "x",
	})
	require.NoError(t, err)

	other, _, err := svc.Register(context.Background(), RegisterInput{
		Username: "other", Email: "other@example.com", Password: "x",
	})
	require.NoError(t, err)

	phone := "0712345678"
	_, err = svc.UpdateProfile(context.Background(), other, owner.ID, UpdateProfileInput{Phone: &phone})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	updated, err := svc.UpdateProfile(context.Background(), owner, owner.ID, UpdateProfileInput{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)

	admin := &user.User{ID: "admin-1", Type: user.TypeAdmin}
	first := "Grace"
	updated, err = svc.UpdateProfile(context.Background(), admin, owner.ID, UpdateProfileInput{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.FirstName)
}
