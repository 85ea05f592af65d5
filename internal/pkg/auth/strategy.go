package auth

import "time"

// Claims are the identity facts carried by an auth token.
type Claims struct {
	UserID int64
	Admin  bool
}

type Strategy interface {
	IssueToken(claims Claims) (string, error)
	ParseToken(token string) (Claims, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
