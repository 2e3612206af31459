package models

import "time"

// RefreshToken is a server-stored opaque token used to mint new API access
// tokens.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}
