package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_storefront/internal/models"
	"github.com/GTDGit/gtd_storefront/internal/store"
	"github.com/GTDGit/gtd_storefront/internal/utils"
)

func newTestAdminAuth(t *testing.T) (*AdminAuthService, *store.AdminStore) {
	t.Helper()
	tokens, _ := newTestTokenService(t)
	_, admin := newTestStores()
	auth, err := NewAdminAuthService(store.NewAdminSessionRegistry(), admin, tokens, DemoAdminPasswords())
	require.NoError(t, err)
	return auth, admin
}

func TestAdminAuthService_Login(t *testing.T) {
	auth, _ := newTestAdminAuth(t)
	ctx := context.Background()

	res, err := auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.AdminIdentity{ID: 1, Username: "admin", Name: "Super Admin", Role: models.RoleSuperAdmin}, res.Admin)

	claims, identity, err := auth.Authenticate(res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "super_admin", claims.Role)
	assert.Equal(t, 1, identity.ID)

	op, err := auth.Login(ctx, "OPERATOR", "operator123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOperator, op.Admin.Role)

	_, err = auth.Login(ctx, "admin", "operator123")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
	_, err = auth.Login(ctx, "ghost", "admin123")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

func TestAdminAuthService_CustomerTokenRejected(t *testing.T) {
	auth, _ := newTestAdminAuth(t)
	pair, err := auth.tokens.Issue(context.Background(), TokenUser, "sid-x", "08123456789", "")
	require.NoError(t, err)

	_, _, err = auth.Authenticate(pair.AccessToken)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestAdminAuthService_InactiveAccount(t *testing.T) {
	auth, admin := newTestAdminAuth(t)
	inactive := models.StatusInactive
	_, err := admin.UpdateAdminUser(2, store.AdminUserPatch{Status: &inactive})
	require.NoError(t, err)

	_, err = auth.Login(context.Background(), "operator", "operator123")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

func TestAdminAuthService_Logout(t *testing.T) {
	auth, _ := newTestAdminAuth(t)
	ctx := context.Background()

	res, err := auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	claims, _, err := auth.Authenticate(res.Tokens.AccessToken)
	require.NoError(t, err)

	access, err := auth.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	require.NoError(t, auth.Logout(ctx, claims.SessionID))
	_, _, err = auth.Authenticate(res.Tokens.AccessToken)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}
