package services

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/rasgroup/bagcapturer/internal/common"
	"github.com/rasgroup/bagcapturer/internal/cryptox"
	"github.com/rasgroup/bagcapturer/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedAccount(t *testing.T, username string, password []byte) *models.Account {
	t.Helper()
	salt := cryptox.GenerateSalt()
	hash := cryptox.HashPassword(password, salt)
	return &models.Account{
		ID:       "acc1",
		UserName: username,
		Salt:     hex.EncodeToString(salt),
		Hash:     hex.EncodeToString(hash),
	}
}

func TestAccountService_Register(t *testing.T) {
	m := &fakeRepoManager{accounts: &fakeAccountsRepo{}}
	s := NewAccountService(nil, m, testConfig())

	a, err := s.Register(context.Background(), "operator", []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, "operator", a.UserName)

	salt, err := hex.DecodeString(a.Salt)
	require.NoError(t, err)
	hash, err := hex.DecodeString(a.Hash)
	require.NoError(t, err)
	assert.Len(t, salt, cryptox.SaltSize)
	assert.Len(t, hash, cryptox.HashSize)
	assert.True(t, cryptox.IsCorrectPassword(salt, hash, []byte("secret")))
}

func TestAccountService_Login(t *testing.T) {
	password := []byte("secret")
	account := storedAccount(t, "operator", password)

	tests := []struct {
		name     string
		accounts *fakeAccountsRepo
		password []byte
		wantErr  error
	}{
		{
			name:     "correct password",
			accounts: &fakeAccountsRepo{getOut: account},
			password: password,
		},
		{
			name:     "wrong password",
			accounts: &fakeAccountsRepo{getOut: account},
			password: []byte("nope"),
			wantErr:  common.ErrorUnauthorized,
		},
		{
			name:     "unknown account",
			accounts: &fakeAccountsRepo{getErr: common.ErrorNotFound},
			password: password,
			wantErr:  common.ErrorUnauthorized,
		},
		{
			name: "malformed stored salt",
			accounts: &fakeAccountsRepo{getOut: &models.Account{
				ID: "acc1", UserName: "operator", Salt: "not-hex", Hash: account.Hash,
			}},
			password: password,
			wantErr:  common.ErrorUnauthorized,
		},
		{
			name:     "lookup failure",
			accounts: &fakeAccountsRepo{getErr: assert.AnError},
			password: password,
			wantErr:  common.ErrorInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refresh := &fakeRefreshRepo{}
			m := &fakeRepoManager{accounts: tt.accounts, refresh: refresh}
			s := NewAccountService(nil, m, testConfig())

			pair, err := s.Login(context.Background(), "operator", tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, pair)
				assert.Equal(t, 0, refresh.createCalls)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, pair.AccessToken)
			assert.NotEmpty(t, pair.RefreshToken)
			assert.Equal(t, 1, refresh.createCalls)

			userID, err := s.ValidateAccessToken(pair.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, account.ID, userID)
		})
	}
}

func TestAccountService_RefreshToken(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	refresh := &fakeRefreshRepo{
		findOut: &models.RefreshToken{
			UserID:  "acc1",
			Token:   "old-token",
			Expires: time.Now().Add(time.Hour),
		},
	}
	m := &fakeRepoManager{refresh: refresh}
	s := NewAccountService(db, m, testConfig())

	pair, err := s.RefreshToken(context.Background(), "old-token")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, "old-token", pair.RefreshToken)
	assert.Equal(t, 1, refresh.createCalls)

	userID, err := s.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "acc1", userID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_RefreshToken_Unknown(t *testing.T) {
	refresh := &fakeRefreshRepo{findErr: common.ErrorNotFound}
	m := &fakeRepoManager{refresh: refresh}
	s := NewAccountService(nil, m, testConfig())

	_, err := s.RefreshToken(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, 0, refresh.createCalls)
}

func TestAccountService_RefreshToken_Expired(t *testing.T) {
	refresh := &fakeRefreshRepo{
		findOut: &models.RefreshToken{
			UserID:  "acc1",
			Token:   "old-token",
			Expires: time.Now().Add(-time.Minute),
		},
	}
	m := &fakeRepoManager{refresh: refresh}
	s := NewAccountService(nil, m, testConfig())

	_, err := s.RefreshToken(context.Background(), "old-token")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	assert.Equal(t, 0, refresh.createCalls)
}
