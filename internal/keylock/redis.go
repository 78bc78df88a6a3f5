package keylock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/yokdil/internal/logger"
)

// Default Redis lock parameters.
const (
	DefaultLockTTL    = 10 * time.Second
	DefaultRetryDelay = 25 * time.Millisecond
	defaultKeyPrefix  = "yokdil:lock:"
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a lock shared by every process connected to the same server.
// Locks expire after TTL so a crashed holder cannot block a key forever.
type Redis struct {
	client *goredis.Client
	ttl    time.Duration
	retry  time.Duration
	prefix string
	log    *logger.Logger
}

// NewRedis wraps an existing client. A zero ttl uses DefaultLockTTL.
func NewRedis(client *goredis.Client, ttl time.Duration, log *logger.Logger) *Redis {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Redis{
		client: client,
		ttl:    ttl,
		retry:  DefaultRetryDelay,
		prefix: defaultKeyPrefix,
		log:    log,
	}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	k := r.prefix + key
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, k, token, r.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, errors.Join(ErrNotAcquired, ctxErr)
			}
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-time.After(r.retry):
		case <-ctx.Done():
			return nil, errors.Join(ErrNotAcquired, ctx.Err())
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, r.client, []string{k}, token).Err(); err != nil {
				r.log.Warn("release lock failed", "key", key, "error", err)
			}
		})
	}, nil
}
