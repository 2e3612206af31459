// Package services contains server-side business logic. This file implements
// AccountService, which manages dashboard accounts and issues/refreshes API
// tokens backed by server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rasgroup/bagcapturer/internal/common"
	"github.com/rasgroup/bagcapturer/internal/cryptox"
	"github.com/rasgroup/bagcapturer/internal/dbx"
	"github.com/rasgroup/bagcapturer/internal/server/auth"
	"github.com/rasgroup/bagcapturer/internal/server/config"
	"github.com/rasgroup/bagcapturer/internal/server/models"
	"github.com/rasgroup/bagcapturer/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AccountService provides account management and API authentication:
// - Register: create dashboard accounts with fresh salted hashes
// - Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
type AccountService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewAccountService constructs an AccountService using repositories and
// server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a new account for username, deriving a fresh salt and
// password hash.
func (s *AccountService) Register(ctx context.Context, username string, password []byte) (*models.Account, error) {
	salt := cryptox.GenerateSalt()
	hash := cryptox.HashPassword(password, salt)

	account := &models.Account{
		UserName: username,
		Salt:     hex.EncodeToString(salt),
		Hash:     hex.EncodeToString(hash),
	}

	repo := s.repomanager.Accounts(s.db)
	a, err := repo.Create(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("error creating account: %v", err)
	}
	return a, nil
}

// List returns all accounts (without credential fields populated by the
// repository's listing query).
func (s *AccountService) List(ctx context.Context) ([]*models.Account, error) {
	return s.repomanager.Accounts(s.db).List(ctx)
}

// Count returns the number of stored accounts. The dashboard only enforces
// auth when this is positive.
func (s *AccountService) Count(ctx context.Context) (int64, error) {
	return s.repomanager.Accounts(s.db).Count(ctx)
}

// Delete removes an account by username.
func (s *AccountService) Delete(ctx context.Context, username string) error {
	return s.repomanager.Accounts(s.db).Delete(ctx, username)
}

// GetByUserName exposes account lookup for the auth gate.
func (s *AccountService) GetByUserName(ctx context.Context, username string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).GetByUserName(ctx, username)
}

// Login verifies the supplied password against the stored salted hash and,
// on success, returns a new TokenPair.
func (s *AccountService) Login(ctx context.Context, username string, password []byte) (*TokenPair, error) {
	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByUserName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	salt, err := hex.DecodeString(account.Salt)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}
	stored, err := hex.DecodeString(account.Hash)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}
	if !cryptox.IsCorrectPassword(salt, stored, password) {
		return nil, common.ErrorUnauthorized
	}

	return s.generateTokenPair(ctx, account.ID, s.db)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *AccountService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %v", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// ValidateAccessToken returns the account ID embedded in a valid access token.
func (s *AccountService) ValidateAccessToken(tokenString string) (string, error) {
	return auth.GetUserIDFromToken(tokenString, s.jwtSecret)
}

// --- helpers below ---

func (s *AccountService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *AccountService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *AccountService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
