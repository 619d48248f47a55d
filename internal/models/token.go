package models

import "time"

// TokenSubjectKind identifies which table an auth token is bound to.
type TokenSubjectKind string

const (
	TokenSubjectAdmin TokenSubjectKind = "admin"
	TokenSubjectUser  TokenSubjectKind = "user"
)

// TokenSubject is the identity an auth token authenticates.
type TokenSubject struct {
	Kind TokenSubjectKind
	ID   int64
}

// AuthToken is a persisted single-use token. Only the hash of the nonce is stored.
type AuthToken struct {
	TokenHash string    `db:"token_hash"`
	AdminID   *int64    `db:"admin_id"`
	UserID    *int64    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Subject returns the identity bound to the token.
func (t *AuthToken) Subject() (TokenSubject, bool) {
	switch {
	case t.AdminID != nil && t.UserID == nil:
		return TokenSubject{Kind: TokenSubjectAdmin, ID: *t.AdminID}, true
	case t.UserID != nil && t.AdminID == nil:
		return TokenSubject{Kind: TokenSubjectUser, ID: *t.UserID}, true
	default:
		return TokenSubject{}, false
	}
}
