package services

import (
	"context"
	"testing"

	"github.com/azayd/website/backend/internal/config"
	"github.com/azayd/website/backend/internal/models"
	"github.com/azayd/website/backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T) (*gorm.DB, *AuthService) {
	t.Helper()
	utils.SetJWTSecret("test-secret")
	db := newServiceDB(t)
	svc := NewAuthService(db, config.JWTConfig{Secret: "test-secret"})
	require.NoError(t, svc.CreateAdminIfNotExists(config.AdminConfig{Username: "root", Password: "s3cret-pass", Email: "root@example.com"}))
	return db, svc
}

func TestAuthService_CreateAdminIfNotExists(t *testing.T) {
	db, svc := newAuthService(t)

	require.NoError(t, svc.CreateAdminIfNotExists(config.AdminConfig{Username: "other"}))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "root", users[0].Username)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.True(t, utils.CheckPassword("s3cret-pass", users[0].Password))
}

func TestAuthService_Login(t *testing.T) {
	db, svc := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "root", "s3cret-pass", "10.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Len(t, res.RefreshToken, 64)
	assert.True(t, res.RefreshExpireAt.After(res.AccessExpireAt))
	require.NotNil(t, res.User)
	assert.NotNil(t, res.User.LastLogin)

	claims, err := utils.ParseToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "root", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	var stored models.RefreshToken
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, hashRefreshToken(res.RefreshToken), stored.TokenHash)
	assert.Equal(t, "10.0.0.1", stored.CreatedByIP)

	_, err = svc.Login(ctx, "root", "wrong", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "s3cret-pass", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "root").Update("is_active", false).Error)
	_, err = svc.Login(ctx, "root", "s3cret-pass", "", "")
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestAuthService_RefreshRotates(t *testing.T) {
	db, svc := newAuthService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "root", "s3cret-pass", "", "")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, login.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	var old models.RefreshToken
	require.NoError(t, db.Where("token_hash = ?", hashRefreshToken(login.RefreshToken)).First(&old).Error)
	require.NotNil(t, old.RevokedAt)
	require.NotNil(t, old.ReplacedByTokenID)

	_, err = svc.Refresh(ctx, login.RefreshToken, "", "")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken, "a rotated token cannot be reused")

	_, err = svc.Refresh(ctx, "", "", "")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	_, err = svc.Refresh(ctx, "unknown", "", "")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))
	_, err = svc.Refresh(ctx, rotated.RefreshToken, "", "")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	assert.NoError(t, svc.Logout(ctx, "unknown"))
}

func TestAuthService_ChangePasswordRevokesTokens(t *testing.T) {
	_, svc := newAuthService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "root", "s3cret-pass", "", "")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, login.User.ID, &ChangePasswordRequest{OldPassword: "bad", NewPassword: "new-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, login.User.ID, &ChangePasswordRequest{OldPassword: "s3cret-pass", NewPassword: "new-password"}))

	_, err = svc.Refresh(ctx, login.RefreshToken, "", "")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	_, err = svc.Login(ctx, "root", "new-password", "", "")
	assert.NoError(t, err)

	_, err = svc.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}
