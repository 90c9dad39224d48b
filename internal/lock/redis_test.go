package lock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "bounceback:lock:sweep:chores", Key("sweep:chores"))
}

func TestTryLockUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	unlock, ok, err := NewRedisLocker(client).TryLock(context.Background(), "sweep", time.Minute)

	assert.Error(t, err)
	assert.False(t, ok)
	assert.Nil(t, unlock)
}
