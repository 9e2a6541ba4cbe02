// internal/websocket/errors.go
package websocket

import "errors"

var (
	ErrTokenBlacklisted = errors.New("token has been revoked")
	ErrUnauthorized     = errors.New("unauthorized")
)
