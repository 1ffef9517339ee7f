package storage

import (
	"context"
	"time"
)

// Store 会话持久化接口。
// Session Store 通过注入的 Store 读写, 便于测试隔离和多后端部署。
type Store interface {
	// Get returns the value for key. ok=false means not found (expired
	// entries count as not found).
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set writes the value with a TTL. ttl<=0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
