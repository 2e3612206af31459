package auth

import (
	"context"
	"encoding/hex"
	"errors"

	"github.com/rasgroup/bagcapturer/internal/common"
	"github.com/rasgroup/bagcapturer/internal/cryptox"
	"github.com/rasgroup/bagcapturer/internal/logging"
	"github.com/rasgroup/bagcapturer/internal/server/models"
)

// AccountLookup is the account-store contract the gate needs.
type AccountLookup interface {
	GetByUserName(ctx context.Context, userName string) (*models.Account, error)
}

// Gate verifies dashboard credentials against stored salted hashes.
// Every failure mode denies: missing account, malformed stored credential
// fields, or a hash mismatch. Malformed stored data is logged as a warning
// and never authorizes.
type Gate struct {
	accounts AccountLookup
	logger   logging.Logger
}

// NewGate constructs a Gate over the given account store.
func NewGate(accounts AccountLookup, logger logging.Logger) *Gate {
	return &Gate{accounts: accounts, logger: logger.With("module", "auth_gate")}
}

// Authorize reports whether username/password match a stored account.
func (g *Gate) Authorize(ctx context.Context, username, password string) bool {
	account, err := g.accounts.GetByUserName(ctx, username)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			g.logger.Warn(ctx, "account lookup failed", "username", username, "error", err.Error())
		}
		return false
	}

	salt, err := hex.DecodeString(account.Salt)
	if err != nil {
		g.logger.Warn(ctx, "stored salt is malformed", "username", username, "error", err.Error())
		return false
	}
	stored, err := hex.DecodeString(account.Hash)
	if err != nil {
		g.logger.Warn(ctx, "stored hash is malformed", "username", username, "error", err.Error())
		return false
	}

	return cryptox.IsCorrectPassword(salt, stored, []byte(password))
}
