package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/capitolcinema/booking-backend/internal/apperr"
	"github.com/capitolcinema/booking-backend/internal/utils"
)

func newTestAuth() (*AuthService, *stubAccounts, *recorderMailer) {
	store := newStubAccounts()
	mailer := &recorderMailer{}
	return NewAuthService(store, mailer, bcrypt.MinCost, "http://cinema.test"), store, mailer
}

// registerActive runs register + activate and returns a login token.
func registerActive(t *testing.T, auth *AuthService, email, password, name string) string {
	t.Helper()
	ctx := context.Background()
	key, err := auth.Register(ctx, password, email, name)
	require.NoError(t, err)
	require.NoError(t, auth.Activate(ctx, key))
	token, _, err := auth.Login(ctx, email, password)
	require.NoError(t, err)
	return token
}

func TestRegisterValidation(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()

	cases := []struct {
		name                  string
		password, email, full string
	}{
		{"password too short", "12345678", "ada@mail.test", "Ada Lovelace"},
		{"email without at", "secret-pass", "ada.mail.test", "Ada Lovelace"},
		{"email without domain", "secret-pass", "ada@", "Ada Lovelace"},
		{"email without local part", "secret-pass", "@mail.test", "Ada Lovelace"},
		{"name too short", "secret-pass", "ada@mail.test", "Ada L"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tc.password, tc.email, tc.full)
			assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth, _, mailer := newTestAuth()
	ctx := context.Background()

	key, err := auth.Register(ctx, "secret-pass", "ada@mail.test", "Ada Lovelace")
	require.NoError(t, err)
	assert.Len(t, key, utils.KeyLength)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ada@mail.test", mailer.sent[0].ToAddress)
	assert.Contains(t, mailer.sent[0].HTMLBody, key)

	_, err = auth.Register(ctx, "other-secret", "ada@mail.test", "Ada Lovelace")
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestActivateConsumesKey(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()

	key, err := auth.Register(ctx, "secret-pass", "ada@mail.test", "Ada Lovelace")
	require.NoError(t, err)

	require.NoError(t, auth.Activate(ctx, key))

	// The key is single use; replaying it is NotFound.
	err = auth.Activate(ctx, key)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	err = auth.Activate(ctx, "short")
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
}

func TestLoginStates(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()

	key, err := auth.Register(ctx, "secret-pass", "ada@mail.test", "Ada Lovelace")
	require.NoError(t, err)

	// Pending accounts cannot log in.
	_, _, err = auth.Login(ctx, "ada@mail.test", "secret-pass")
	assert.Equal(t, apperr.NotActive, apperr.KindOf(err))

	require.NoError(t, auth.Activate(ctx, key))

	token, name, err := auth.Login(ctx, "ada@mail.test", "secret-pass")
	require.NoError(t, err)
	assert.Len(t, token, utils.KeyLength)
	assert.Equal(t, "Ada Lovelace", name)

	_, _, err = auth.Login(ctx, "ada@mail.test", "wrong-password")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
	_, _, err = auth.Login(ctx, "nobody@mail.test", "secret-pass")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	// Deactivated accounts are locked out as well.
	require.NoError(t, auth.Deactivate(ctx, token, "secret-pass"))
	_, _, err = auth.Login(ctx, "ada@mail.test", "secret-pass")
	assert.Equal(t, apperr.NotActive, apperr.KindOf(err))

	// The old token no longer passes the barrier either.
	_, err = auth.Authorize(ctx, token, 0)
	assert.Equal(t, apperr.NotActive, apperr.KindOf(err))
}

func TestDeactivateNeedsTokenAndPassword(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()
	token := registerActive(t, auth, "ada@mail.test", "secret-pass", "Ada Lovelace")

	err := auth.Deactivate(ctx, token, "wrong-password")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	err = auth.Deactivate(ctx, "000000000000000000000000000000000000", "secret-pass")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestAuthorizeRoleBoundary(t *testing.T) {
	auth, store, _ := newTestAuth()
	ctx := context.Background()
	token := registerActive(t, auth, "ada@mail.test", "secret-pass", "Ada Lovelace")

	// Default role passes an unprivileged barrier.
	sum, err := auth.Authorize(ctx, token, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Role)

	// ...but not the admin barrier.
	_, err = auth.Authorize(ctx, token, AdminRoleLevel)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	// minRole == role is allowed, one above is not.
	store.setRole(sum.ID, AdminRoleLevel)
	_, err = auth.Authorize(ctx, token, AdminRoleLevel)
	assert.NoError(t, err)
	_, err = auth.Authorize(ctx, token, AdminRoleLevel+1)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestAuthorizeTokenShape(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()

	_, err := auth.Authorize(ctx, "way-too-short", 0)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))

	_, err = auth.Authorize(ctx, "000000000000000000000000000000000000", 0)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()
	token := registerActive(t, auth, "ada@mail.test", "secret-pass", "Ada Lovelace")
	registerActive(t, auth, "grace@mail.test", "secret-pass", "Grace Hopper")

	err := auth.UpdateProfile(ctx, token, nil, nil, nil)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))

	taken := "grace@mail.test"
	err = auth.UpdateProfile(ctx, token, &taken, nil, nil)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	newEmail := "lovelace@mail.test"
	newName := "Ada King-Lovelace"
	newPass := "even-more-secret"
	require.NoError(t, auth.UpdateProfile(ctx, token, &newEmail, &newName, &newPass))

	// The new credentials work, the old email is gone.
	_, name, err := auth.Login(ctx, "lovelace@mail.test", "even-more-secret")
	require.NoError(t, err)
	assert.Equal(t, "Ada King-Lovelace", name)
	_, _, err = auth.Login(ctx, "ada@mail.test", "even-more-secret")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}
