// Package models defines the persistent data structures of the capturer
// server.
package models

import "time"

// Account is a dashboard login account. Salt and Hash carry the stored
// credential fields as hex strings, exactly as persisted; decoding them into
// byte buffers is the job of the authentication gate, which treats any
// malformed value as a denial.
type Account struct {
	ID        string
	UserName  string
	Salt      string
	Hash      string
	CreatedAt time.Time
}
