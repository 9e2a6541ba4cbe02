// internal/pkg/session/reset.go
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	xerrors "leadscout-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// Password reset tokens live in Redis with a short TTL and are consumed
// atomically so a token can never be replayed.

const resetTokenTTL = 30 * time.Minute

// StorePasswordResetToken binds a single-use reset token to a user.
func (m *Manager) StorePasswordResetToken(ctx context.Context, token string, userID int64) error {
	key := m.resetKey(token)
	return m.client.Set(ctx, key, strconv.FormatInt(userID, 10), resetTokenTTL).Err()
}

// ConsumePasswordResetToken redeems a reset token, deleting it in the same
// operation. Unknown or expired tokens return ErrNotFound.
func (m *Manager) ConsumePasswordResetToken(ctx context.Context, token string) (int64, error) {
	val, err := m.client.GetDel(ctx, m.resetKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, xerrors.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to consume reset token: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt reset token payload: %w", err)
	}
	return userID, nil
}

func (m *Manager) resetKey(token string) string {
	return fmt.Sprintf("pwdreset:%s", token)
}
